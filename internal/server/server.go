// Package server wires the application together: database, services,
// handlers, middleware, routes, and the HTTP server lifecycle. It is the
// composition root: every dependency chain is assembled here and nowhere
// else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/sakif/pastebin/internal/auth"
	"github.com/sakif/pastebin/internal/config"
	"github.com/sakif/pastebin/internal/handler"
	"github.com/sakif/pastebin/internal/highlight"
	"github.com/sakif/pastebin/internal/middleware"
	"github.com/sakif/pastebin/internal/policy"
	sqliteRepo "github.com/sakif/pastebin/internal/repository/sqlite"
	"github.com/sakif/pastebin/internal/service"
)

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Server
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// repositories → policy/registry/renderer → services → handlers → routes.
func New(cfg *config.Server, opts *config.Options, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(opts); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the assembled router; tests mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls this itself; it exists for
// callers that never Start (tests).
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes(opts *config.Options) error {
	// Token service is optional: without a secret the API still works, but
	// every request is anonymous and the auth routes are not registered.
	var tokens *auth.TokenService
	if s.cfg.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(s.cfg.JWTSecret)
		if err != nil {
			return err
		}
	} else {
		s.logger.Warn("PASTE_JWT_SECRET not set — authentication is disabled")
	}

	pol := policy.New(opts)
	registry := highlight.NewRegistry()
	renderer := highlight.NewRenderer(opts)
	users := sqliteRepo.NewUserDB(s.db)

	snippetService := service.NewSnippetService(
		s.db, users, pol, registry, renderer, opts, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.StripSlashes)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.ResolveActor(tokens, users))

	s.router.MethodNotAllowed(handler.MethodNotAllowed)
	s.router.NotFound(handler.NotFound)

	// Rate limiting applies to mutating snippet routes only; reads stay
	// cheap and unthrottled.
	var limiter *middleware.RateLimiter
	if s.cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(
			rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst, 10*time.Minute)
	}
	limited := middleware.RateLimit(limiter)

	if tokens != nil {
		authService := service.NewAuthService(
			users, auth.NewPasswordService(), s.cfg.StaffUsers, s.logger)

		var github *auth.GitHubProvider
		if s.cfg.GitHubClientID != "" && s.cfg.GitHubClientSecret != "" {
			github = auth.NewGitHubProvider(
				s.cfg.GitHubClientID, s.cfg.GitHubClientSecret, s.cfg.GitHubCallbackURL)
		}

		authHandler := handler.NewAuthHandler(authService, tokens, github, s.logger)

		s.router.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
			if github != nil {
				r.Get("/github/login", authHandler.HandleGitHubLogin)
				r.Get("/github/callback", authHandler.HandleGitHubCallback)
			}
		})
	}

	s.router.Get("/", snippetHandler.HandleList)
	s.router.With(limited).Post("/", snippetHandler.HandleCreate)
	s.router.Get("/user/{user_id}", snippetHandler.HandleListByUser)

	s.router.Route("/{id}", func(r chi.Router) {
		r.Get("/", snippetHandler.HandleGet)
		r.With(limited).Put("/", snippetHandler.HandleUpdate)
		r.With(limited).Patch("/", snippetHandler.HandlePatch)
		r.With(limited).Delete("/", snippetHandler.HandleDelete)
		r.Get("/highlight", snippetHandler.HandleHighlight)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
