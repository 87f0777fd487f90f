// Package server is the wiring layer: it builds the store for the chosen
// backend, assembles services and handlers, mounts the routes, and owns
// startup/shutdown. This is the composition root — every dependency chain
// is put together here and nowhere else:
//
//	store (sqlite or jsonfile) → services → handlers → routes
//
// Handlers never see the store, services never see HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ayakodama/wishboard/internal/blob"
	"github.com/ayakodama/wishboard/internal/handler"
	"github.com/ayakodama/wishboard/internal/middleware"
	"github.com/ayakodama/wishboard/internal/repository"
	"github.com/ayakodama/wishboard/internal/repository/jsonfile"
	"github.com/ayakodama/wishboard/internal/repository/sqlite"
	"github.com/ayakodama/wishboard/internal/service"
)

// Backend names the two interchangeable storage variants.
const (
	BackendSQLite   = "sqlite"
	BackendJSONFile = "jsonfile"
)

// Config holds server configuration, loaded from env vars in main.
type Config struct {
	Port      int
	StaticDir string

	Backend  string // BackendSQLite or BackendJSONFile
	DBPath   string // sqlite database file
	JSONPath string // flat-file store path
}

// Server owns the router and the store; the store is closed during
// graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	store  repository.Store
}

// New builds the store for the configured backend and wires all routes.
// The uploader is optional: pass nil to run without photo uploads (the
// upload route is simply not mounted and everything else still works).
func New(cfg Config, logger *slog.Logger, uploader blob.Uploader) (*Server, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes(uploader)
	return s, nil
}

func newStore(cfg Config) (repository.Store, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case BackendJSONFile:
		store, err := jsonfile.New(cfg.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("opening jsonfile store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func (s *Server) setupRoutes(uploader blob.Uploader) {
	// Middleware order matters: RequestID before Logger so log lines can
	// carry the id; Recoverer turns panics into 500s instead of crashes.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	entryService := service.NewEntryService(s.store, s.store, s.logger)
	reactionService := service.NewReactionService(s.store, s.store, s.logger)
	commentService := service.NewCommentService(s.store, s.store, s.logger)

	entryHandler := handler.NewEntryHandler(entryService, s.logger)
	reactionHandler := handler.NewReactionHandler(reactionService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/entries", entryHandler.HandleList)
		r.Post("/entries", entryHandler.HandleCreate)
		r.Get("/entries/{id}", entryHandler.HandleGetByID)
		r.Put("/entries/{id}", entryHandler.HandleUpdate)
		r.Delete("/entries/{id}", entryHandler.HandleDelete)

		r.Get("/comments", commentHandler.HandleList)
		r.Post("/comments", commentHandler.HandleCreate)
		r.Delete("/comments", commentHandler.HandleDelete)

		r.Post("/reactions", reactionHandler.HandleCreate)
		r.Delete("/reactions", reactionHandler.HandleDelete)

		if uploader != nil {
			uploadHandler := handler.NewUploadHandler(uploader, s.logger)
			r.Post("/upload", uploadHandler.HandleUpload)
		}
	})

	// The board itself: a static single page plus its assets.
	if s.config.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
		s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(s.config.StaticDir, "index.html"))
		})
	}
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("backend", s.config.Backend),
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
