package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(backend Backend, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("workoutlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Workout logging server. Log strength or run sessions to the Notion workout log and inspect recent submissions. Body parts are normalized to 胸 肩 腕 背中 脚 腹; see the body_parts resource for accepted names."),
	)

	h := &handlers{backend: backend, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolRecentSubmissions, Handler: h.recentSubmissions},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resBodyParts, Handler: h.bodyParts},
		server.ServerResource{Resource: resRecentSubmissions, Handler: h.recentSubmissionsResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	backend Backend
	log     *slog.Logger
}

// --- Resource definitions ---

var resBodyParts = mcp.NewResource(
	"workoutlog://body_parts",
	"Body Parts",
	mcp.WithResourceDescription("Canonical body-part categories and the names that map to each"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSubmissions = mcp.NewResource(
	"workoutlog://recent_submissions",
	"Recent Submissions",
	mcp.WithResourceDescription("The 20 most recent logWorkout outcomes"),
	mcp.WithMIMEType("application/json"),
)
