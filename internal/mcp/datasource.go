package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/workoutlog/internal/storage"
	"github.com/claude/workoutlog/internal/workout"
)

// ErrBadPayload is returned when tool arguments do not decode as a workout.
var ErrBadPayload = errors.New("bad workout payload")

// Backend abstracts where tool calls go. Local (in-process) and HTTPClient
// (a remote workoutlog server over its REST API) both satisfy it.
type Backend interface {
	// LogWorkout takes the same JSON body as POST /logWorkout.
	LogWorkout(ctx context.Context, payload json.RawMessage) (*workout.Result, error)
	RecentSubmissions(ctx context.Context, limit int) ([]storage.Submission, error)
}

// Compile-time checks.
var (
	_ Backend = (*Local)(nil)
	_ Backend = (*HTTPClient)(nil)
)

// Local runs tool calls against an in-process Logger and records each
// outcome in the submission log.
type Local struct {
	workouts    *workout.Logger
	submissions storage.Store
	log         *slog.Logger
}

// NewLocal creates a Local backend. A nil store disables the submission log.
func NewLocal(workouts *workout.Logger, submissions storage.Store, log *slog.Logger) *Local {
	if submissions == nil {
		submissions = storage.Nop{}
	}
	return &Local{workouts: workouts, submissions: submissions, log: log}
}

func (l *Local) LogWorkout(ctx context.Context, payload json.RawMessage) (*workout.Result, error) {
	if !l.workouts.Ready() {
		return nil, workout.ErrNotConfigured
	}

	var req workout.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	received := time.Now()
	res, err := l.workouts.Log(ctx, &req)
	if !errors.Is(err, workout.ErrMissingFields) {
		sub := storage.NewSubmission(storage.SourceMCP, &req, res, err, received)
		if recErr := l.submissions.InsertSubmission(context.WithoutCancel(ctx), sub); recErr != nil {
			l.log.Error("failed to record submission", "source", sub.Source, "error", recErr)
		}
	}
	return res, err
}

func (l *Local) RecentSubmissions(ctx context.Context, limit int) ([]storage.Submission, error) {
	return l.submissions.RecentSubmissions(ctx, limit)
}
