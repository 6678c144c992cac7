// cmd/migrate/main.go
package main

import (
	"card-advisor/internal/catalog"
	"card-advisor/internal/config"
	"card-advisor/internal/logging"
	"card-advisor/internal/storage/postgres"
	"card-advisor/migrations"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	seed := flag.Bool("seed", false, "replace the catalog with the bundled card set after migrating")
	flag.Parse()

	cfg := config.MustLoad()
	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	if err := run(context.Background(), cfg.Catalog.DatabaseURL, command, *seed); err != nil {
		slog.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn, command string, seed bool) error {
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	slog.Info("running migrations", "command", command)
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown command %q, want up, down or status", command)
	}
	if err != nil {
		return err
	}

	if seed {
		pool, err := postgres.Connect(ctx, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()
		cards := catalog.Seed()
		if err := postgres.NewStorage(pool).ReplaceAll(ctx, cards); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		slog.Info("catalog seeded", "cards", len(cards))
	}

	slog.Info("migrations applied")
	return nil
}
