// aria-agent is the voice agent worker: it connects to the voice gateway,
// answers calls as ARIA and journals everything to Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"

	"github.com/artex-assurances/aria/internal/dotenv"
	"github.com/artex-assurances/aria/pkg/agent/audit"
	"github.com/artex-assurances/aria/pkg/agent/bridge"
	"github.com/artex-assurances/aria/pkg/agent/config"
	"github.com/artex-assurances/aria/pkg/agent/directory"
	"github.com/artex-assurances/aria/pkg/agent/identity"
	"github.com/artex-assurances/aria/pkg/agent/llm"
	"github.com/artex-assurances/aria/pkg/agent/tools"
	"github.com/artex-assurances/aria/pkg/notify"
)

func main() {
	if err := run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "aria-agent: %v\n", err)
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
	if err := cfg.RequireAgentCredentials(); err != nil {
		return err
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

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	var store identity.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		store = identity.NewRedisStore(client, cfg.SessionSnapshotTTL)
		logger.Info("identity snapshots enabled", "addr", cfg.RedisAddr, "ttl", cfg.SessionSnapshotTTL)
	}

	recorder := audit.NewPostgres(pool)
	dir := directory.NewPostgres(pool)

	opts := []tools.Option{}
	if cfg.SendGridAPIKey != "" {
		opts = append(opts, tools.WithMailer(notify.NewSendGrid(cfg.SendGridAPIKey, cfg.SenderName, cfg.SenderEmail)))
	} else {
		logger.Warn("sendgrid not configured, confirmation emails disabled")
	}
	if cfg.GoogleCredentialsFile != "" {
		scheduler, err := notify.NewGoogleCalendar(ctx, cfg.GoogleCredentialsFile, cfg.GoogleCalendarID)
		if err != nil {
			return fmt.Errorf("google calendar: %w", err)
		}
		opts = append(opts, tools.WithScheduler(scheduler))
	} else {
		logger.Warn("google calendar not configured, callback scheduling disabled")
	}

	registry := tools.NewToolset(dir, recorder, logger, opts...).Registry()

	gemini, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}
	runner := llm.NewRunner(gemini.Models, cfg.Model, registry, logger)

	worker := bridge.NewWorker(cfg.GatewayURL, &bridge.CallFactory{
		Recorder: recorder,
		Store:    store,
		Turner:   runner,
		Logger:   logger,
	}, logger)

	logger.Info("aria-agent starting", "gateway", cfg.GatewayURL, "model", cfg.Model,
		"tools", len(registry.Names()))
	return worker.Run(ctx)
}
