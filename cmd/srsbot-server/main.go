// Package main provides the HTTP server for srsbot.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/srsbot/internal/artifact"
	"github.com/raphaelgruber/srsbot/internal/config"
	"github.com/raphaelgruber/srsbot/internal/conversation"
	"github.com/raphaelgruber/srsbot/internal/llm"
	"github.com/raphaelgruber/srsbot/internal/metrics"
	"github.com/raphaelgruber/srsbot/internal/prompts"
	"github.com/raphaelgruber/srsbot/internal/server"
	"github.com/raphaelgruber/srsbot/internal/service"
	"github.com/raphaelgruber/srsbot/web"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("srsbot-server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg)
	defer func() { _ = cleanup() }()
	slog.SetDefault(logger)

	logger.Info("srsbot-server starting",
		"version", version,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
		"llm_model", cfg.LLMModel,
		"artifact_store", cfg.ArtifactStore,
	)

	p, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	mc := metrics.NewCollector()

	// Create model with timeout and retry policy
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	model, err := llm.NewModel(ctx, cfg, mc)
	cancel()
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}
	policy := llm.DefaultRetryPolicy()
	policy.Timeout = cfg.LLMTimeout
	policy.MaxRetries = cfg.LLMMaxRetries
	resilient := llm.NewResilient(model, policy, logger)

	registry, closeRegistry, err := newRegistry(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRegistry()

	sessions := conversation.NewSessions(cfg.SessionCapacity, cfg.SessionTTL)
	chat := service.NewChatService(resilient, p, registry, sessions, mc, logger)

	distFS, err := fs.Sub(web.Dist, "dist")
	if err != nil {
		return fmt.Errorf("create sub filesystem: %w", err)
	}

	srv := server.New(server.Deps{
		Chat:      chat,
		Metrics:   mc,
		Logger:    logger,
		Static:    distFS,
		PublicURL: cfg.PublicURL,
		Limits: server.RateLimits{
			ChatPerMinute: cfg.RateLimitChat,
			PerHour:       cfg.RateLimitHourly,
			PerDay:        cfg.RateLimitDaily,
		},
	})

	// Write timeout covers a chat turn with synthesis, each retried.
	writeTimeout := 2*time.Duration(cfg.LLMMaxRetries+1)*cfg.LLMTimeout + 30*time.Second

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("web UI available", "url", fmt.Sprintf("http://localhost:%s/", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newRegistry builds the configured artifact store and its cleanup function.
func newRegistry(cfg config.Config, logger *slog.Logger) (artifact.Registry, func(), error) {
	switch cfg.ArtifactStore {
	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := artifact.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		reg := artifact.NewRedisRegistry(client, cfg.ArtifactTTL)
		logger.Info("artifact store ready", "store", "redis", "ttl", cfg.ArtifactTTL)
		return reg, func() {
			logger.Info("closing redis connection")
			_ = reg.Close()
		}, nil

	case config.StoreMemory, "":
		logger.Info("artifact store ready", "store", "memory",
			"capacity", cfg.ArtifactCapacity, "ttl", cfg.ArtifactTTL)
		return artifact.NewMemoryRegistry(cfg.ArtifactCapacity, cfg.ArtifactTTL), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported artifact store: %s", cfg.ArtifactStore)
	}
}
