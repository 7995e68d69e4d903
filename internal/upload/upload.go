package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/workoutlog/internal/workout"
)

// Sender logs one session from a /logWorkout body. *mcp.HTTPClient
// satisfies it.
type Sender interface {
	LogWorkout(ctx context.Context, payload json.RawMessage) (*workout.Result, error)
}

// Stats tracks upload progress.
type Stats struct {
	FilesTotal int

	SessionsSent    int
	SessionsSkipped int
	SessionsErrored int
	SetsCreated     int
}

// Uploader walks a directory of .json files, each holding one /logWorkout
// body or an array of them, and sends every session not yet logged.
// Sessions are sent one at a time in file order and are never retried
// within a run, since a repeated call creates duplicate pages.
type Uploader struct {
	sender Sender
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. sender may be nil in dry-run mode.
func New(sender Sender, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		sender: sender,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload. A failed session is counted and logged; the
// run continues with the next one.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := u.collectFiles()
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if err := u.processFile(ctx, rel); err != nil {
			return &u.stats, fmt.Errorf("processing %s: %w", rel, err)
		}
	}
	return &u.stats, nil
}

// collectFiles returns the relative paths of all .json files in lexical order.
func (u *Uploader) collectFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		rel, err := filepath.Rel(u.dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", u.dir, err)
	}
	return files, nil
}

func (u *Uploader) processFile(ctx context.Context, rel string) error {
	data, err := os.ReadFile(filepath.Join(u.dir, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}

	payloads, err := splitPayloads(data)
	if err != nil {
		u.log.Warn("skipping unreadable file", "file", rel, "error", err)
		u.stats.SessionsErrored++
		return nil
	}

	for i, payload := range payloads {
		hash := hashPayload(payload)

		done, err := u.state.IsUploaded(rel, i, hash)
		if err != nil {
			return fmt.Errorf("checking state: %w", err)
		}
		if done {
			u.stats.SessionsSkipped++
			continue
		}

		if u.dryRun {
			u.checkPayload(rel, i, payload)
			continue
		}

		res, err := u.sender.LogWorkout(ctx, payload)
		if err != nil {
			u.log.Error("session failed", "file", rel, "index", i, "error", err)
			u.stats.SessionsErrored++
			continue
		}
		if err := u.state.MarkUploaded(rel, i, hash, res.SessionPageID); err != nil {
			return fmt.Errorf("marking uploaded: %w", err)
		}
		u.stats.SessionsSent++
		u.stats.SetsCreated += res.SetsCreated
		u.log.Info("session logged", "file", rel, "index", i, "session_page_id", res.SessionPageID, "sets", res.SetsCreated)
	}
	return nil
}

// checkPayload reports whether a payload would be accepted, without sending it.
func (u *Uploader) checkPayload(rel string, idx int, payload json.RawMessage) {
	var req workout.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		u.log.Warn("dry run: bad payload", "file", rel, "index", idx, "error", err)
		u.stats.SessionsErrored++
		return
	}
	if err := req.Validate(); err != nil {
		u.log.Warn("dry run: invalid session", "file", rel, "index", idx, "error", err)
		u.stats.SessionsErrored++
		return
	}
	u.log.Info("dry run: would log", "file", rel, "index", idx,
		"title", req.Title, "date", req.Date, "type", workout.NormalizeType(req.Type), "sets", len(req.Sets))
	u.stats.SessionsSent++
}

// splitPayloads returns the sessions in a file: a single object or each
// element of a top-level array.
func splitPayloads(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	return []json.RawMessage{data}, nil
}
