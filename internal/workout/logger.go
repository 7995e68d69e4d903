package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/workoutlog/internal/notion"
)

// ErrNotConfigured is returned when the Notion token or the log database id
// is missing.
var ErrNotConfigured = errors.New("server misconfig (NOTION_TOKEN/DB_LOG)")

// PageCreator creates a page in a Notion database. *notion.Client satisfies it.
type PageCreator interface {
	CreatePage(ctx context.Context, databaseID string, props notion.Properties) (*notion.Page, error)
}

// Compile-time check: *notion.Client satisfies PageCreator.
var _ PageCreator = (*notion.Client)(nil)

// Step names the Notion call that failed.
type Step string

const (
	StepCreateSession     Step = "Create Session"
	StepCreateRunSet      Step = "Create Run Set"
	StepCreateStrengthSet Step = "Create Strength Set"
)

// StepError wraps a failed Notion call. Pages created before the failure are
// left in place; SessionPageID and SetsCreated describe them.
type StepError struct {
	Step          Step
	SessionPageID string
	SetsCreated   int
	Err           error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("notion(%s): %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Result is the outcome of a fully logged session.
type Result struct {
	SessionPageID string `json:"session_page_id"`
	SetsCreated   int    `json:"sets_created"`
}

// Logger writes a workout session and its sets to Notion.
type Logger struct {
	pages  PageCreator
	logDB  string
	setsDB string
	log    *slog.Logger
}

// NewLogger creates a Logger. pages may be nil when no Notion token is
// configured; Log then returns ErrNotConfigured. An empty setsDatabaseID
// disables set pages.
func NewLogger(pages PageCreator, logDatabaseID, setsDatabaseID string, log *slog.Logger) *Logger {
	return &Logger{pages: pages, logDB: logDatabaseID, setsDB: setsDatabaseID, log: log}
}

// Ready reports whether the Notion token and log database are configured.
func (l *Logger) Ready() bool {
	return l != nil && l.pages != nil && l.logDB != ""
}

// Log creates the session page, then each set page in order. Calls are
// sequential and not retried; the first failure stops the sequence.
func (l *Logger) Log(ctx context.Context, req *Request) (*Result, error) {
	if !l.Ready() {
		return nil, ErrNotConfigured
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l.log.Debug("notion config",
		"token", "set",
		"db_log", l.logDB,
		"db_sets", l.setsDB,
	)

	sessionType := NormalizeType(req.Type)
	tags := NormalizeBodyParts(sessionType, req.BodyPart)

	page, err := l.pages.CreatePage(ctx, l.logDB, sessionProperties(req, sessionType, tags))
	if err != nil {
		return nil, &StepError{Step: StepCreateSession, Err: err}
	}
	res := &Result{SessionPageID: page.ID}

	if l.setsDB == "" {
		return res, nil
	}

	if sessionType == TypeRun && req.Run.hasData() {
		if _, err := l.pages.CreatePage(ctx, l.setsDB, runSetProperties(page.ID, req.Run)); err != nil {
			return nil, l.partial(StepCreateRunSet, res, err)
		}
		res.SetsCreated++
	}

	if sessionType == TypeStrength {
		labels := setLabeler{}
		for _, s := range req.Sets {
			base := strings.TrimSpace(s.Exercise.Value)
			if base == "" {
				continue
			}
			props := strengthSetProperties(page.ID, labels.next(base), s)
			if _, err := l.pages.CreatePage(ctx, l.setsDB, props); err != nil {
				return nil, l.partial(StepCreateStrengthSet, res, err)
			}
			res.SetsCreated++
		}
	}

	return res, nil
}

func (l *Logger) partial(step Step, res *Result, err error) error {
	l.log.Warn("session partially logged",
		"step", string(step),
		"session_page_id", res.SessionPageID,
		"sets_created", res.SetsCreated,
	)
	return &StepError{Step: step, SessionPageID: res.SessionPageID, SetsCreated: res.SetsCreated, Err: err}
}

func sessionProperties(req *Request, sessionType string, tags []string) notion.Properties {
	props := notion.Properties{
		"Session Title": notion.Title(req.Title),
		"Date":          notion.Date(req.Date),
		"Type":          notion.Select(sessionType),
	}
	if len(tags) > 0 {
		props["Body Part"] = notion.MultiSelect(tags...)
	}
	if req.Memo.Value != "" {
		props["Memo"] = notion.Text(req.Memo.Value)
	}
	return props
}

func runSetProperties(sessionID string, run *RunInput) notion.Properties {
	props := notion.Properties{
		"Session":  notion.Relation(sessionID),
		"Exercise": notion.Title(CardioExercise),
	}
	if run.DistanceKm.Valid {
		props["Distance"] = notion.Number(run.DistanceKm.Value)
	}
	if run.TimeMin.Valid {
		props["Time"] = notion.Number(run.TimeMin.Value)
	}
	if run.StartTime.IsString {
		if label := strings.TrimSpace(run.StartTime.Value); label != "" {
			props["Start Time"] = notion.Select(label)
		}
	}
	return props
}

func strengthSetProperties(sessionID, label string, s SetInput) notion.Properties {
	props := notion.Properties{
		"Session":  notion.Relation(sessionID),
		"Exercise": notion.Title(label),
	}
	if s.Weight.Valid {
		props["Weight"] = notion.Number(s.Weight.Value)
	}
	if s.Reps.Valid {
		props["Reps"] = notion.Number(s.Reps.Value)
	}
	if s.Sets.Valid {
		props["Sets"] = notion.Number(s.Sets.Value)
	}
	return props
}
