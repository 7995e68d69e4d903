package workout

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/claude/workoutlog/internal/notion"
)

// Description is the caller-facing form of a Log error.
type Description struct {
	Status  int
	Message string
	// Detail is the raw Notion response text for API failures, or the
	// error text for unexpected failures.
	Detail string
	// Downstream is set for Notion and unexpected failures. Detail is then
	// reported to the caller even when empty.
	Downstream bool
}

// Describe maps an error returned by Logger.Log to a status and message.
func Describe(err error) Description {
	switch {
	case errors.Is(err, ErrMissingFields):
		return Description{Status: http.StatusBadRequest, Message: "Missing fields (title/date/type)"}
	case errors.Is(err, ErrNotConfigured):
		return Description{Status: http.StatusInternalServerError, Message: "Server misconfig (NOTION_TOKEN/DB_LOG)"}
	}

	var stepErr *StepError
	var apiErr *notion.APIError
	if errors.As(err, &stepErr) && errors.As(err, &apiErr) {
		return Description{
			Status:     http.StatusInternalServerError,
			Message:    fmt.Sprintf("Notion(%s) error", stepErr.Step),
			Detail:     apiErr.Body,
			Downstream: true,
		}
	}
	return Description{Status: http.StatusInternalServerError, Message: "Server error", Detail: err.Error(), Downstream: true}
}
