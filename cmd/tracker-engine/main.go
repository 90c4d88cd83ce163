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

	"github.com/stridelog/tracker-engine/internal/api"
	"github.com/stridelog/tracker-engine/internal/auth"
	"github.com/stridelog/tracker-engine/internal/catalog"
	"github.com/stridelog/tracker-engine/internal/config"
	"github.com/stridelog/tracker-engine/internal/notify"
	"github.com/stridelog/tracker-engine/internal/storage"
	"github.com/stridelog/tracker-engine/internal/tracker"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting tracker-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled(),
		"redis", cfg.Redis.Enabled(),
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Optional catalog overrides
	if cfg.Catalog.Dir != "" {
		if err := catalog.LoadOverrides(cfg.Catalog.Dir); err != nil {
			slog.Warn("failed to load catalog overrides", "dir", cfg.Catalog.Dir, "error", err)
		}
	}

	// Relational backend. Absence degrades to document-store mode.
	var entities storage.EntityStore
	var pgStore *storage.PostgresStore
	if cfg.Database.Enabled() {
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		pgStore, err = storage.NewPostgresStore(initCtx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: int32(cfg.Database.MaxOpenConns),
			MaxIdleConns: int32(cfg.Database.MaxIdleConns),
		})
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		entities = pgStore
		slog.Info("database connected successfully")
	} else {
		slog.Warn("relational backend disabled, running in document-store mode")
	}

	// Document store and session backend. Absence degrades further to the
	// local backup plus in-memory sessions.
	var docs storage.DocumentStore
	var redisStore *storage.RedisStore
	if cfg.Redis.Enabled() {
		redisStore, err = storage.NewRedisStore(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("failed to connect to redis, continuing without document store", "error", err)
		} else {
			docs = redisStore
			slog.Info("redis connected successfully")
		}
	}

	// Local backup mirror, always on.
	backup, err := storage.NewLocalStore(cfg.Backup.Path)
	if err != nil {
		slog.Error("failed to open local backup store", "path", cfg.Backup.Path, "error", err)
		os.Exit(1)
	}

	// User accounts prefer Postgres, then Redis. Without either there is
	// nowhere durable to keep accounts.
	var users storage.UserStore
	switch {
	case pgStore != nil:
		users = pgStore
	case redisStore != nil:
		users = redisStore
	default:
		slog.Error("no user store available: configure DATABASE_DSN or REDIS_ADDRESS")
		os.Exit(1)
	}

	// Sessions live in Redis when available, in memory otherwise.
	var sessions auth.SessionStore
	if redisStore != nil {
		sessions = redisStore
	} else {
		slog.Warn("redis unavailable, sessions will not survive restarts")
		sessions = auth.NewMemorySessionStore()
	}
	authSvc := auth.NewService(users, sessions, cfg.Auth)

	// Notification center with its auto-dismiss sweeper
	center := notify.NewCenter(cfg.Notify.DismissAfter, cfg.Notify.SweepInterval)

	// Application state store
	store := tracker.NewStore(docs, entities, backup, center)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the notification sweeper
	center.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, store, authSvc, center, docs, entities)
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

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Close storage backends
	if pgStore != nil {
		pgStore.Close()
	}
	if redisStore != nil {
		redisStore.Close()
	}
	if err := backup.Close(); err != nil {
		slog.Error("backup store close error", "error", err)
	}

	slog.Info("tracker-engine stopped")
}
