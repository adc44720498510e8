// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This is the composition root: the entire dependency chain is wired
// here, in one place, rather than scattered across the codebase.
//
//	sqlite.DB → services (auth, user, message) → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete DB), handlers get services (not
// repositories). The handlers never touch the database; the services
// never touch HTTP.
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
	"github.com/go-playground/validator/v10"

	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/config"
	"github.com/sakif/messagely/internal/handler"
	"github.com/sakif/messagely/internal/middleware"
	sqliteRepo "github.com/sakif/messagely/internal/repository/sqlite"
	"github.com/sakif/messagely/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires the full dependency graph and returns a Server ready to
// Start.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	POST /auth/register          → register, returns token
//	POST /auth/login             → login, returns token
//	GET  /users                  → list users (basic info)
//	GET  /users/{username}       → own profile only
//	GET  /users/{username}/to    → own inbox only
//	GET  /users/{username}/from  → own outbox only
//	POST /messages               → send as self
//	GET  /messages/{id}          → sender or recipient only
//	POST /messages/{id}/read     → recipient only
//
// Everything under /users and /messages requires a valid bearer token;
// the two /auth routes are the only anonymous ones.
func (s *Server) setupRoutes() error {
	// Global middleware, in order: request ID first so the logger can
	// see it, recoverer before anything that might panic.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.Auth.Secret, s.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.Auth.BcryptCost)
	validate := validator.New()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, s.db, s.logger)
	messageService := service.NewMessageService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, validate, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	messageHandler := handler.NewMessageHandler(messageService, validate, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/users", userHandler.HandleList)
		r.Get("/users/{username}", userHandler.HandleGet)
		r.Get("/users/{username}/to", userHandler.HandleInbox)
		r.Get("/users/{username}/from", userHandler.HandleOutbox)

		r.Post("/messages", messageHandler.HandleSend)
		r.Get("/messages/{id}", messageHandler.HandleGet)
		r.Post("/messages/{id}/read", messageHandler.HandleMarkRead)
	})

	return nil
}

// Start runs the HTTP server and blocks until a shutdown signal or a
// server error.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database (flushes the WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.Timeout,
		WriteTimeout: s.config.Timeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.config.Address),
			slog.String("database", s.config.DBPath),
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
