package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/claude/workoutlog/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultSubmissionLimit = 20

// --- Tool definitions ---

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Log one workout session to Notion. Creates the session page, then one page per strength set (or a single cardio page for runs). Repeated exercise names are numbered: Squat1, Squat2, ..."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Session title, e.g. 'Leg Day'")),
	mcp.WithString("date", mcp.Required(), mcp.Description("Session date (YYYY-MM-DD)")),
	mcp.WithString("type", mcp.Required(), mcp.Description("Session type. Text containing 'run' becomes Run; 'strength', 'gym', 'lift' or '筋' becomes Strength.")),
	mcp.WithString("body_part", mcp.Description("Body parts separated by commas, slashes or spaces (e.g. 'chest, arms'). Ignored for runs.")),
	mcp.WithString("memo", mcp.Description("Free-form note stored on the session page")),
	mcp.WithArray("sets",
		mcp.Description("Strength sets in order. Only used for Strength sessions."),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"exercise": map[string]any{"type": "string", "description": "Exercise name"},
				"weight":   map[string]any{"type": "number", "description": "Weight"},
				"reps":     map[string]any{"type": "number", "description": "Repetitions"},
				"sets":     map[string]any{"type": "number", "description": "Number of sets"},
			},
			"required": []string{"exercise"},
		}),
	),
	mcp.WithNumber("run_distance_km", mcp.Description("Run distance in kilometres")),
	mcp.WithNumber("run_time_min", mcp.Description("Run duration in minutes")),
	mcp.WithString("run_start_time", mcp.Description("Start time label, e.g. 'Morning'")),
)

var toolRecentSubmissions = mcp.NewTool("recent_submissions",
	mcp.WithDescription("List recent logWorkout outcomes, newest first. Empty when the submission log is disabled."),
	mcp.WithNumber("limit", mcp.Description("Maximum rows to return. Defaults to 20.")),
)

// --- Tool handlers ---

// logResult mirrors the /logWorkout success body.
type logResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	SessionPageID string `json:"session_page_id"`
	SetsCreated   int    `json:"sets_created"`
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := workoutPayload(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError("Bad JSON"), nil
	}

	res, err := h.backend.LogWorkout(ctx, payload)
	if err != nil {
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError(errorText(err)), nil
	}

	result, err := mcp.NewToolResultJSON(logResult{
		Success:       true,
		Message:       "Workout logged successfully",
		SessionPageID: res.SessionPageID,
		SetsCreated:   res.SetsCreated,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) recentSubmissions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultSubmissionLimit)
	if limit <= 0 {
		limit = defaultSubmissionLimit
	}

	subs, err := h.backend.RecentSubmissions(ctx, limit)
	if err != nil {
		h.log.Error("mcp recent_submissions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"submissions": subs})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// workoutPayload maps flat tool arguments onto the /logWorkout body.
func workoutPayload(args map[string]any) (json.RawMessage, error) {
	body := make(map[string]any, len(args))
	for _, key := range []string{"title", "date", "type", "memo", "sets"} {
		if v, ok := args[key]; ok {
			body[key] = v
		}
	}
	if v, ok := args["body_part"]; ok {
		body["bodyPart"] = v
	}

	run := make(map[string]any)
	for arg, key := range map[string]string{
		"run_distance_km": "distance_km",
		"run_time_min":    "time_min",
		"run_start_time":  "start_time",
	} {
		if v, ok := args[arg]; ok {
			run[key] = v
		}
	}
	if len(run) > 0 {
		body["run"] = run
	}

	return json.Marshal(body)
}

// errorText renders a backend error the way /logWorkout reports it.
func errorText(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return joinDetail(remote.Message, remote.Detail)
	}
	if errors.Is(err, ErrBadPayload) {
		return "Bad JSON"
	}
	d := workout.Describe(err)
	return joinDetail(d.Message, d.Detail)
}

func joinDetail(msg, detail string) string {
	if detail == "" {
		return msg
	}
	return msg + ": " + detail
}
