// aria-migrate applies the embedded goose migrations to the database named by
// ARIA_DATABASE_URL.
//
//	aria-migrate up        apply pending migrations (default)
//	aria-migrate down      roll back the most recent migration
//	aria-migrate status    print migration status
package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/artex-assurances/aria/internal/dotenv"
	"github.com/artex-assurances/aria/migrations"
	"github.com/artex-assurances/aria/pkg/agent/config"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "aria-migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
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

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db, ".")
	case "down":
		return goose.DownContext(ctx, db, ".")
	case "status":
		return goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
}
