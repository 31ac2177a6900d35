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

	"github.com/terra-clan/coding-tracker/internal/analyzer"
	"github.com/terra-clan/coding-tracker/internal/api"
	"github.com/terra-clan/coding-tracker/internal/catalog"
	"github.com/terra-clan/coding-tracker/internal/cleanup"
	"github.com/terra-clan/coding-tracker/internal/config"
	"github.com/terra-clan/coding-tracker/internal/health"
	"github.com/terra-clan/coding-tracker/internal/storage"
	"github.com/terra-clan/coding-tracker/internal/tracker"
	"github.com/terra-clan/coding-tracker/internal/view"
	"github.com/terra-clan/coding-tracker/pkg/client"
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

	level, _ := config.ParseLogLevel(cfg.Log.Level)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("starting coding-tracker",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	repo, err := openRepository(initCtx, cfg.Database)
	if err != nil {
		slog.Error("failed to create repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Load challenges
	challenges := catalog.NewLoader()
	if cfg.Catalog.Dir != "" {
		if err := challenges.LoadFromDir(cfg.Catalog.Dir); err != nil {
			slog.Warn("failed to load challenges from dir", "dir", cfg.Catalog.Dir, "error", err)
		}
	}
	if cfg.Catalog.SeedDefaults && challenges.Len() == 0 {
		challenges.LoadDefaults()
	}
	slog.Info("challenge catalog ready", "count", challenges.Len())

	service := tracker.New(challenges, repo, analyzer.New())

	registry := health.NewRegistry()
	registry.Register("storage", health.CheckerFunc(service.Ping))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openViewStore(initCtx, ctx, cfg)
	if err != nil {
		slog.Error("failed to create view store", "error", err)
		os.Exit(1)
	}
	registry.Register("view_store", health.CheckerFunc(store.Ping))

	var opts []client.Option
	if cfg.View.RequestTimeout > 0 {
		opts = append(opts, client.WithTimeout(cfg.View.RequestTimeout))
	}
	backend := client.NewClient(cfg.APIBaseURL(), opts...)

	renderer, err := view.NewRenderer()
	if err != nil {
		slog.Error("failed to parse view templates", "error", err)
		os.Exit(1)
	}
	controller := view.NewController(backend, store)
	viewHandler := view.NewHandler(controller, renderer, cfg.View.SessionTTL)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, service, registry, viewHandler)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr, "api_base_url", cfg.APIBaseURL())
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

	// Let background feedback fetches finish while the API still answers
	fetched := make(chan struct{})
	go func() {
		controller.Wait()
		close(fetched)
	}()
	select {
	case <-fetched:
	case <-shutdownCtx.Done():
		slog.Warn("feedback fetches still pending at shutdown")
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("coding-tracker stopped")
}

// openRepository connects to PostgreSQL and migrates it, or falls back to
// the in-memory repository when no DSN is configured
func openRepository(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error) {
	if cfg.DSN == "" {
		slog.Warn("DATABASE_DSN not set, submissions are kept in memory")
		return storage.NewMemoryRepository(), nil
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.DSN,
		MaxOpenConns: int32(cfg.MaxOpenConns),
		MaxIdleConns: int32(cfg.MaxIdleConns),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("database connected successfully")

	slog.Info("running database migrations", "dir", cfg.MigrationsDir)
	if err := storage.RunMigrations(ctx, repo.Pool(), cfg.MigrationsDir); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// openViewStore selects Redis when an address is configured. The in-memory
// store gets a cleanup worker bound to runCtx.
func openViewStore(initCtx, runCtx context.Context, cfg *config.Config) (view.Store, error) {
	if cfg.Redis.Address != "" {
		rdb, err := view.NewRedisClient(initCtx, view.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("view sessions stored in redis", "address", cfg.Redis.Address)
		return view.NewRedisStore(rdb, cfg.View.SessionTTL), nil
	}

	store := view.NewMemoryStore(cfg.View.SessionTTL)
	cleanup.NewCleaner(store, cfg.Cleanup.Interval).Start(runCtx)
	return store, nil
}
