package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everai-labs/simulation-engine/internal/api"
	"github.com/everai-labs/simulation-engine/internal/audit"
	"github.com/everai-labs/simulation-engine/internal/clients"
	"github.com/everai-labs/simulation-engine/internal/config"
	"github.com/everai-labs/simulation-engine/internal/simulation"
	"github.com/everai-labs/simulation-engine/internal/storage"
	"github.com/everai-labs/simulation-engine/internal/voices"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration; refuses to start without store DSN and provider keys
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.RunMigrations(initCtx, repo.Pool(), cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Provider clients
	textGen := clients.NewOpenAIClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
	retell := clients.NewRetellClient(cfg.Retell.BaseURL, cfg.Retell.APIKey, cfg.Retell.Timeout)

	// Preview audit trail; the service runs without it when Redis is down
	recorder := audit.NewRecorder(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	var auditor simulation.PreviewAuditor
	var previews api.PreviewLog
	if err := recorder.Ping(initCtx); err != nil {
		slog.Warn("redis unavailable, preview audit trail disabled", "error", err)
	} else {
		auditor = recorder
		previews = recorder
	}

	// Load voice catalog
	catalog := voices.NewCatalog()
	if err := catalog.LoadFromDir(cfg.Voices.Dir); err != nil {
		slog.Warn("failed to load voice catalog", "dir", cfg.Voices.Dir, "error", err)
	}

	// Initialize orchestrator
	orchestrator := simulation.NewOrchestrator(repo, textGen, retell, auditor)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, orchestrator, catalog, previews)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := recorder.Close(); err != nil {
		slog.Warn("failed to close preview recorder", "error", err)
	}

	if err := repo.Close(); err != nil {
		slog.Warn("failed to close repository", "error", err)
	}

	slog.Info("simulation-engine stopped")
}
