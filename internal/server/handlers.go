package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/workoutlog/internal/storage"
	"github.com/claude/workoutlog/internal/workout"
)

const maxBodyBytes = 1 << 20

// logResponse is the body of every /logWorkout response.
type logResponse struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	SessionPageID string  `json:"session_page_id,omitempty"`
	SetsCreated   *int    `json:"sets_created,omitempty"`
	Error         *string `json:"error,omitempty"`
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	case http.MethodHead:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
	}
}

func (s *Server) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, logResponse{Message: "Method Not Allowed"})
		return
	}
	if !secretMatches(s.secret, r) {
		writeJSON(w, http.StatusUnauthorized, logResponse{Message: unauthorizedMessage})
		return
	}
	if !s.workouts.Ready() {
		s.log.Error("notion not configured")
		writeJSON(w, http.StatusInternalServerError, logResponse{Message: workout.Describe(workout.ErrNotConfigured).Message})
		return
	}

	req, err := decodeWorkout(w, r)
	if err != nil {
		s.log.Warn("bad workout payload", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusBadRequest, logResponse{Message: "Bad JSON"})
		return
	}

	received := time.Now()
	res, err := s.workouts.Log(r.Context(), req)
	if !errors.Is(err, workout.ErrMissingFields) {
		s.record(storage.NewSubmission(storage.SourceWebhook, req, res, err, received))
	}
	if err != nil {
		d := workout.Describe(err)
		if d.Status >= http.StatusInternalServerError {
			s.log.Error("log workout failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		}
		resp := logResponse{Message: d.Message}
		if d.Downstream {
			resp.Error = &d.Detail
		}
		writeJSON(w, d.Status, resp)
		return
	}

	writeJSON(w, http.StatusOK, logResponse{
		Success:       true,
		Message:       "Workout logged successfully",
		SessionPageID: res.SessionPageID,
		SetsCreated:   &res.SetsCreated,
	})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	subs, err := s.submissions.RecentSubmissions(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if subs == nil {
		subs = []storage.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// record stores a submission. Failures are logged and never affect the response.
func (s *Server) record(sub storage.Submission) {
	ctx, cancel := contextWithTimeout()
	defer cancel()

	if err := s.submissions.InsertSubmission(ctx, sub); err != nil {
		s.log.Error("failed to record submission", "source", sub.Source, "error", err)
	}
}

// decodeWorkout reads the request body as JSON. An empty body decodes as {}.
func decodeWorkout(w http.ResponseWriter, r *http.Request) (*workout.Request, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	var req workout.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// contextWithTimeout returns a background context with a 5-second timeout for submission logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
