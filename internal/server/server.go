package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lilalabs/keygate/internal/config"
	"github.com/lilalabs/keygate/internal/handler"
	"github.com/lilalabs/keygate/internal/server/middleware"
	"github.com/lilalabs/keygate/internal/service"
	"github.com/lilalabs/keygate/internal/store"
)

// Server is the top-level HTTP server. It owns the chi router and composes
// the handlers, auth middleware, and store into the route tree.
type Server struct {
	cfg        config.ServerConfig
	router     chi.Router
	store      *store.Store
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired, ready for
// ListenAndServe.
func New(cfg config.ServerConfig, st *store.Store, authSvc *service.AuthService, keySvc *service.KeyService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		logger: logger,
	}
	s.setupRouter(authSvc, keySvc)
	return s
}

func (s *Server) setupRouter(authSvc *service.AuthService, keySvc *service.KeyService) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	keyHandler := handler.NewKeyHandler(keySvc, s.store, s.logger)
	registerHandler := handler.NewRegisterHandler(keySvc, s.store, s.logger)
	adminHandler := handler.NewAdminHandler(s.store, authSvc, s.logger)

	r.Get("/generate-apikey", keyHandler.Generate)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", registerHandler.Register)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/create", adminHandler.Create)
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(authSvc))

				r.Get("/users", adminHandler.ListUsers)
				r.Get("/apikey", keyHandler.List)
				r.Delete("/apikey/{id}", keyHandler.Revoke)
			})
		})
	})

	// Static assets (the original deployment served a public/ directory).
	if s.cfg.StaticDir != "" {
		if info, err := os.Stat(s.cfg.StaticDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
		}
	}

	s.router = r
}

// handleHealthz is a liveness probe: 200 whenever the process is up.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe: 200 when the database answers a ping,
// 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness ping failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then drains in-flight requests within the shutdown timeout.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
