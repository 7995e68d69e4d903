package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/claude/workoutlog/internal/notion"
	"github.com/claude/workoutlog/internal/storage"
	"github.com/claude/workoutlog/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeBackend records payloads and returns canned results.
type fakeBackend struct {
	payloads []json.RawMessage
	res      *workout.Result
	err      error
	subs     []storage.Submission
	limit    int
}

func (f *fakeBackend) LogWorkout(_ context.Context, payload json.RawMessage) (*workout.Result, error) {
	f.payloads = append(f.payloads, payload)
	return f.res, f.err
}

func (f *fakeBackend) RecentSubmissions(_ context.Context, limit int) ([]storage.Submission, error) {
	f.limit = limit
	return f.subs, f.err
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func newHandlers(b Backend) *handlers {
	return &handlers{backend: b, log: slog.New(slog.DiscardHandler)}
}

// TestNewRegistersServer verifies New builds a server without panicking.
func TestNewRegistersServer(t *testing.T) {
	if s := New(&fakeBackend{}, "test", slog.New(slog.DiscardHandler)); s == nil {
		t.Fatal("New returned nil")
	}
}

// TestWorkoutPayload verifies flat tool arguments map onto the webhook body.
func TestWorkoutPayload(t *testing.T) {
	payload, err := workoutPayload(map[string]any{
		"title":           "Morning Run",
		"date":            "2024-03-01",
		"type":            "run",
		"body_part":       "legs",
		"memo":            "easy",
		"run_distance_km": 5.2,
		"run_start_time":  "Morning",
		"ignored":         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatal(err)
	}
	if body["bodyPart"] != "legs" {
		t.Errorf("bodyPart = %v", body["bodyPart"])
	}
	if _, ok := body["ignored"]; ok {
		t.Error("unknown argument was forwarded")
	}
	run, ok := body["run"].(map[string]any)
	if !ok {
		t.Fatalf("run = %v, want object", body["run"])
	}
	if run["distance_km"] != 5.2 || run["start_time"] != "Morning" {
		t.Errorf("run = %v", run)
	}
	if _, ok := run["time_min"]; ok {
		t.Error("time_min should be absent")
	}

	var req workout.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		t.Fatalf("payload does not decode as a workout: %v", err)
	}
	if req.Title != "Morning Run" || !req.Run.DistanceKm.Valid {
		t.Errorf("decoded request = %+v", req)
	}
}

// TestWorkoutPayloadNoRun verifies the run object is omitted without run arguments.
func TestWorkoutPayloadNoRun(t *testing.T) {
	payload, err := workoutPayload(map[string]any{"title": "t"})
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != `{"title":"t"}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestLogWorkoutTool(t *testing.T) {
	b := &fakeBackend{res: &workout.Result{SessionPageID: "page-1", SetsCreated: 1}}
	res, err := newHandlers(b).logWorkout(context.Background(), callTool(map[string]any{
		"title": "Leg Day", "date": "2024-01-01", "type": "strength",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var got logResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Success || got.SessionPageID != "page-1" || got.SetsCreated != 1 {
		t.Errorf("result = %+v", got)
	}
	if len(b.payloads) != 1 {
		t.Fatalf("backend calls = %d, want 1", len(b.payloads))
	}
}

// TestLogWorkoutToolErrors verifies failures surface as tool errors with
// the webhook's messages.
func TestLogWorkoutToolErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"missing fields", workout.ErrMissingFields, "Missing fields (title/date/type)"},
		{"misconfig", workout.ErrNotConfigured, "Server misconfig (NOTION_TOKEN/DB_LOG)"},
		{"bad payload", fmt.Errorf("%w: eof", ErrBadPayload), "Bad JSON"},
		{
			"notion",
			&workout.StepError{Step: workout.StepCreateStrengthSet, Err: &notion.APIError{StatusCode: 400, Body: "validation"}},
			"Notion(Create Strength Set) error: validation",
		},
		{"other", errors.New("dial tcp: refused"), "Server error: dial tcp: refused"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := newHandlers(&fakeBackend{err: tc.err}).logWorkout(context.Background(), callTool(nil))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Fatal("expected tool error")
			}
			if got := resultText(t, res); got != tc.want {
				t.Errorf("text = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRecentSubmissionsTool(t *testing.T) {
	b := &fakeBackend{subs: []storage.Submission{{Title: "Leg Day", Status: storage.StatusSuccess}}}
	h := newHandlers(b)

	res, err := h.recentSubmissions(context.Background(), callTool(map[string]any{"limit": 5.0}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if b.limit != 5 {
		t.Errorf("limit = %d, want 5", b.limit)
	}

	if _, err := h.recentSubmissions(context.Background(), callTool(nil)); err != nil {
		t.Fatal(err)
	}
	if b.limit != defaultSubmissionLimit {
		t.Errorf("default limit = %d, want %d", b.limit, defaultSubmissionLimit)
	}
}

func TestBodyPartsResource(t *testing.T) {
	var req mcp.ReadResourceRequest
	req.Params.URI = "workoutlog://body_parts"

	contents, err := newHandlers(&fakeBackend{}).bodyParts(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content type = %T", contents[0])
	}
	var vocab map[string][]string
	if err := json.Unmarshal([]byte(text.Text), &vocab); err != nil {
		t.Fatal(err)
	}
	if len(vocab["脚"]) == 0 {
		t.Errorf("vocab = %v, want 脚 entries", vocab)
	}
}

// TestLocalBackend verifies the in-process backend logs through Notion and
// records the outcome.
func TestLocalBackend(t *testing.T) {
	calls := 0
	fakeNotion := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"object":"page","id":"page-%d"}`, calls)
	}))
	defer fakeNotion.Close()

	store, err := storage.OpenSQLite(t.Context(), filepath.Join(t.TempDir(), "subs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	log := slog.New(slog.DiscardHandler)
	local := NewLocal(workout.NewLogger(notion.NewClient(fakeNotion.URL, "tok", 0), "db-log", "", log), store, log)

	res, err := local.LogWorkout(t.Context(), json.RawMessage(`{"title":"Run","date":"2024-01-01","type":"run"}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.SessionPageID != "page-1" {
		t.Errorf("session = %q, want page-1", res.SessionPageID)
	}

	if _, err := local.LogWorkout(t.Context(), json.RawMessage(`[1]`)); !errors.Is(err, ErrBadPayload) {
		t.Errorf("err = %v, want ErrBadPayload", err)
	}
	if _, err := local.LogWorkout(t.Context(), json.RawMessage(`{}`)); !errors.Is(err, workout.ErrMissingFields) {
		t.Errorf("err = %v, want ErrMissingFields", err)
	}

	subs, err := local.RecentSubmissions(t.Context(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Source != storage.SourceMCP || subs[0].Type != workout.TypeRun {
		t.Errorf("subs = %+v", subs)
	}
}

// TestLocalBackendNotConfigured verifies a missing token is reported before decoding.
func TestLocalBackendNotConfigured(t *testing.T) {
	local := NewLocal(workout.NewLogger(nil, "", "", slog.New(slog.DiscardHandler)), nil, slog.New(slog.DiscardHandler))
	if _, err := local.LogWorkout(context.Background(), json.RawMessage(`{`)); !errors.Is(err, workout.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
