// aria-dashboard serves the supervision API over the call journal.
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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artex-assurances/aria/internal/dotenv"
	"github.com/artex-assurances/aria/pkg/agent/config"
	"github.com/artex-assurances/aria/pkg/dashboard"
)

func main() {
	if err := run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "aria-dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := dotenv.Load(); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("ARIA_DATABASE_URL must be set")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	srv := dashboard.New(cfg, dashboard.NewPostgresStore(pool), logger)
	httpSrv := &http.Server{
		Addr:              cfg.DashboardAddr,
		Handler:           http.TimeoutHandler(srv.Handler(), cfg.HandlerTimeout, "timeout"),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}

	listenErr := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
			return
		}
		listenErr <- nil
	}()

	logger.Info("aria-dashboard listening", "addr", cfg.DashboardAddr,
		"auth", len(cfg.DashboardAPIKeys) > 0)

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-listenErr; err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("aria-dashboard stopped")
	return nil
}
