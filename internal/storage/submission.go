package storage

import (
	"errors"
	"time"

	"github.com/claude/workoutlog/internal/workout"
	"github.com/google/uuid"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	SourceWebhook = "webhook"
	SourceMCP     = "mcp"
)

// Submission records the outcome of one logWorkout call.
type Submission struct {
	ID            uuid.UUID `json:"id"`
	ReceivedAt    time.Time `json:"received_at"`
	Source        string    `json:"source"`
	Title         string    `json:"title"`
	Date          string    `json:"date"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	SessionPageID *string   `json:"session_page_id"`
	SetsCreated   int       `json:"sets_created"`
	DurationMs    int       `json:"duration_ms"`
	ErrorMessage  *string   `json:"error_message"`
}

// NewSubmission builds a record from a Logger outcome. For a partially
// logged session the created page id and set count come from the
// *workout.StepError.
func NewSubmission(source string, req *workout.Request, res *workout.Result, err error, received time.Time) Submission {
	sub := Submission{
		ID:         uuid.New(),
		ReceivedAt: received.UTC(),
		Source:     source,
		Title:      req.Title,
		Date:       req.Date,
		Type:       workout.NormalizeType(req.Type),
		Status:     StatusSuccess,
		DurationMs: int(time.Since(received).Milliseconds()),
	}

	if res != nil {
		sub.SessionPageID = nonEmpty(res.SessionPageID)
		sub.SetsCreated = res.SetsCreated
	}
	if err != nil {
		sub.Status = StatusError
		msg := err.Error()
		sub.ErrorMessage = &msg

		var stepErr *workout.StepError
		if errors.As(err, &stepErr) {
			sub.SessionPageID = nonEmpty(stepErr.SessionPageID)
			sub.SetsCreated = stepErr.SetsCreated
		}
	}
	return sub
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
