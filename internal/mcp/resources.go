package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/workoutlog/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) bodyParts(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, workout.BodyPartVocabulary())
}

func (h *handlers) recentSubmissionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	subs, err := h.backend.RecentSubmissions(ctx, defaultSubmissionLimit)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, map[string]any{"submissions": subs})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
