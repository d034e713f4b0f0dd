// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/notegraph/notegraph/internal/ai"
	"github.com/notegraph/notegraph/internal/api"
	"github.com/notegraph/notegraph/internal/artifact"
	"github.com/notegraph/notegraph/internal/chat"
	"github.com/notegraph/notegraph/internal/ingest"
	"github.com/notegraph/notegraph/internal/mcpserver"
	"github.com/notegraph/notegraph/internal/nodeservice"
	"github.com/notegraph/notegraph/internal/search"
	"github.com/notegraph/notegraph/internal/sse"
	"github.com/notegraph/notegraph/internal/store"
)

// workspaceDirName is the default workspace under the user's home directory.
const workspaceDirName = ".research_data"

// resolveWorkspace returns the workspace root, defaulting to
// <home>/.research_data when unset.
func resolveWorkspace(root string) (string, error) {
	if root != "" {
		return filepath.Abs(root)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, workspaceDirName), nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	workspace, err := resolveWorkspace(cfg.Workspace.Root)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return fmt.Errorf("create workspace dir: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("workspace", workspace),
		slog.Int("dim", cfg.Store.Dim),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Embedded store (graph + FTS + vectors).
	db, err := store.Open(filepath.Join(workspace, "research.db"), cfg.Store.Dim)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Artifact store for content bodies.
	artifacts, err := artifact.NewStore(filepath.Join(workspace, "artifacts"))
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}

	// Default (local) AI clients. Gemini embedders are built per ingest
	// request; search and chat run on the configured Ollama host.
	embedder := &ai.OllamaEmbedder{Host: cfg.Providers.OllamaHost, Model: cfg.Providers.EmbedModel}
	llm := &ai.OllamaChat{Host: cfg.Providers.OllamaHost}

	pipeline := ingest.NewPipeline(db, artifacts, ingest.Options{
		ChunkStrategy: cfg.Ingest.ChunkStrategy,
		ChunkSize:     cfg.Ingest.ChunkSize,
		TargetTokens:  cfg.Ingest.TargetTokens,
	}, logger)
	engine := search.NewEngine(db, embedder)
	orchestrator := chat.NewOrchestrator(db, embedder, llm, cfg.Providers.ChatModel)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := nodeservice.NewService(db, artifacts, pipeline, engine, orchestrator,
		broker, cfg.Providers.OllamaHost, cfg.Providers.EmbedModel, logger)

	// MCP stdio mode serves tools over stdin/stdout and skips HTTP entirely.
	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the artifacts directory for external edits and refresh the
	// full-text index.
	g.Go(func() error {
		if err := artifact.Watch(gCtx, artifacts, logger, svc.RefreshArtifact); err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
