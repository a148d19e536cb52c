package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	catalog  *catalog.Catalog
	sessions *SessionManager
	metrics  *Metrics
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves mutating routes open.
func New(db *storage.DB, cat *catalog.Catalog, metrics *Metrics, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		catalog:  cat,
		sessions: NewSessionManager(db, metrics, log),
		metrics:  metrics,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions exposes the session manager so shutdown can close open sessions.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(s.metrics.RequestMetrics)
	s.router.Use(CORS)

	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)
		r.Get("/metrics/today", s.handleGetMetrics)
		r.Put("/metrics/today", s.handlePutMetrics)
		r.Get("/streak", s.handleGetStreak)
		r.Get("/activity/weekly", s.handleGetWeeklyActivity)
		r.Get("/milestones", s.handleGetMilestones)
		r.Get("/home", s.handleHome)
		r.Get("/history", s.handleHistory)
		r.Delete("/data", s.handleClearData)

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/{cmd}", s.handleSessionCommand)
		r.Delete("/sessions/{id}", s.handleCloseSession)
	})
}
