package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kickoff/fantasy/internal/app"
	"github.com/kickoff/fantasy/internal/auth"
	"github.com/kickoff/fantasy/internal/infra"
	"github.com/kickoff/fantasy/internal/provider"
	"github.com/kickoff/fantasy/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if cfg.MigrateOnStart {
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg, "fantasy-api")
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Identity provider
	authClient := provider.NewSupabaseAuthClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, logger)

	var resolver auth.Resolver
	if cfg.SupabaseJWTSecret != "" {
		resolver = auth.NewJWTResolver(auth.NewJWTManager(cfg.SupabaseJWTSecret, time.Hour))
		logger.Info("resolving identities from signed tokens")
	} else {
		resolver = auth.NewProviderResolver(authClient)
		logger.Info("resolving identities through auth provider")
	}

	r := app.NewRouter(app.RouterDeps{
		DB:                 pool,
		Tx:                 repository.NewPoolTxRunner(pool),
		Health:             pool,
		Repos:              app.PostgresRepositories(),
		Resolver:           resolver,
		Authenticator:      authClient,
		Logger:             logger,
		Metrics:            infra.NewMetrics(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TeamStrictReads:    cfg.TeamStrictReads,
		LoginRateLimit:     cfg.LoginRateLimit,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
