// Package api exposes the tracker over HTTP: cookie-authenticated JSON
// endpoints plus a websocket event stream.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stridelog/tracker-engine/internal/auth"
	"github.com/stridelog/tracker-engine/internal/config"
	"github.com/stridelog/tracker-engine/internal/notify"
	"github.com/stridelog/tracker-engine/internal/storage"
	"github.com/stridelog/tracker-engine/internal/tracker"
)

// Server represents the HTTP API server
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	store    *tracker.Store
	auth     *auth.Service
	center   *notify.Center
	session  *SessionMiddleware
	docs     storage.DocumentStore
	entities storage.EntityStore
}

// NewServer creates a new API server. docs and entities may be nil in
// degraded modes; they are only consulted by the readiness probe.
func NewServer(
	cfg config.ServerConfig,
	store *tracker.Store,
	authSvc *auth.Service,
	center *notify.Center,
	docs storage.DocumentStore,
	entities storage.EntityStore,
) *Server {
	s := &Server{
		config:   cfg,
		store:    store,
		auth:     authSvc,
		center:   center,
		session:  NewSessionMiddleware(authSvc),
		docs:     docs,
		entities: entities,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration. Credentials are required for the session cookie.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health checks (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
		})

		// Everything else requires a live session
		r.Group(func(r chi.Router) {
			r.Use(s.session.Require)

			// Raw document access
			r.Get("/data", s.handleGetData)
			r.Put("/data", s.handlePutData)
			r.Delete("/data", s.handleEraseData)

			// Derived views
			r.Route("/state", func(r chi.Router) {
				r.Get("/", s.handleGetState)
				r.Get("/today", s.handleGetToday)
				r.Get("/metrics", s.handleGetMetrics)
				r.Get("/heatmap", s.handleGetHeatmap)
				r.Get("/events", s.handleEventsWS)
				r.Post("/reset", s.handleReset)
			})

			// Daily habits
			r.Post("/daily/{key}/toggle", s.handleToggleDailyTask)

			// Meals
			r.Route("/meals", func(r chi.Router) {
				r.Post("/", s.handleAddMeal)
				r.Delete("/{id}", s.handleRemoveMeal)
			})

			// Day plan
			r.Route("/schedule", func(r chi.Router) {
				r.Post("/", s.handleAddScheduleTask)
				r.Post("/copy-yesterday", s.handleCopyYesterdaySchedule)
				r.Post("/apply-template", s.handleApplyScheduleTemplates)
				r.Post("/{id}/toggle", s.handleToggleScheduleTask)
				r.Delete("/{id}", s.handleRemoveScheduleTask)
			})

			// Checklists
			r.Route("/skills", func(r chi.Router) {
				r.Post("/", s.handleAddSkill)
				r.Post("/{id}/toggle", s.handleToggleSkill)
				r.Delete("/{id}", s.handleRemoveSkill)
			})
			r.Route("/projects", func(r chi.Router) {
				r.Post("/", s.handleAddProject)
				r.Put("/{id}/status", s.handleUpdateProjectStatus)
				r.Delete("/{id}", s.handleRemoveProject)
			})
			r.Route("/english", func(r chi.Router) {
				r.Post("/", s.handleAddEnglishTopic)
				r.Post("/{id}/toggle", s.handleToggleEnglishTopic)
				r.Delete("/{id}", s.handleRemoveEnglishTopic)
			})

			// Weight
			r.Put("/weight", s.handleUpdateWeight)
			r.Put("/weight/goal", s.handleUpdateWeightGoal)
			r.Put("/start-date", s.handleUpdateStartDate)

			// Notes
			r.Route("/notes", func(r chi.Router) {
				r.Put("/weekly", s.handleUpdateWeeklyPlan)
				r.Put("/daily", s.handleUpdateDailyNote)
				r.Put("/{type}", s.handleUpdateNote)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleListNotifications)
				r.Delete("/{id}", s.handleDismissNotification)
			})

			// Static catalog
			r.Get("/catalog", s.handleGetCatalog)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
