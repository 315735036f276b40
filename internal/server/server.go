package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mixelka/tutorsite/internal/parser"
	"github.com/mixelka/tutorsite/pkg/models"
)

// LeadStore persists submissions; *database.DB implements it
type LeadStore interface {
	InsertLead(ctx context.Context, lead *models.Lead) (int64, error)
}

// Notifier relays a submission to the site owner; *mailer.Notifier implements it
type Notifier interface {
	Send(ctx context.Context, name, email, message string) bool
}

// LeadAlerter is an optional secondary channel for logged leads
type LeadAlerter interface {
	Alert(ctx context.Context, lead *models.Lead) error
}

// Server is the public website
type Server struct {
	router http.Handler
	addr   string
	logger *slog.Logger
}

// Deps dependencies for creating a server
type Deps struct {
	Addr      string
	StaticDir string
	Store     LeadStore
	Notifier  Notifier
	Alerter   LeadAlerter // may be nil
	Cleaner   *parser.MessageCleaner
	Logger    *slog.Logger
}

// New creates a new server and registers routes
func New(deps Deps) *Server {
	logger := deps.Logger.With("component", "http")

	cleaner := deps.Cleaner
	if cleaner == nil {
		cleaner = parser.NewMessageCleaner()
	}

	pipeline := &leadPipeline{
		store:    deps.Store,
		notifier: deps.Notifier,
		alerter:  deps.Alerter,
		logger:   deps.Logger.With("component", "lead_pipeline"),
	}
	contact := NewContactHandler(pipeline, cleaner, deps.Logger)
	leadAPI := NewLeadAPIHandler(pipeline, deps.Logger)
	pages := NewPages(deps.StaticDir, deps.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/contact", contact.Submit)
	r.Post("/api/lead", leadAPI.Create)
	r.Get("/static/*", pages.Asset)
	r.Get("/", pages.Page)
	r.Get("/*", pages.Page)

	return &Server{
		router: r,
		addr:   deps.Addr,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	// WriteTimeout leaves room for one email provider round trip
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// RequestLogger is middleware that logs each HTTP request
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
