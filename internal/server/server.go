package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/workoutlog/internal/storage"
	"github.com/claude/workoutlog/internal/workout"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	workouts    *workout.Logger
	submissions storage.Store
	secret      string
	log         *slog.Logger
	router      chi.Router
}

// New creates a new Server with all routes configured. An empty
// webhookSecret disables the secret check.
func New(workouts *workout.Logger, submissions storage.Store, webhookSecret string, log *slog.Logger) *Server {
	if submissions == nil {
		submissions = storage.Nop{}
	}
	s := &Server{
		workouts:    workouts,
		submissions: submissions,
		secret:      webhookSecret,
		log:         log,
		router:      chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Recoverer(s.log))

	// Handlers check the method themselves so every endpoint answers
	// unsupported methods with its own JSON body.
	for _, prefix := range []string{"", "/api"} {
		s.router.HandleFunc(prefix+"/liveness", s.handleLiveness)
		s.router.HandleFunc(prefix+"/logWorkout", s.handleLogWorkout)
	}

	s.router.With(WebhookSecret(s.secret)).Get("/api/submissions", s.handleSubmissions)
}

// SetMCP mounts an MCP transport at /mcp behind the webhook secret.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(WebhookSecret(s.secret)).Handle("/mcp", h)
}
