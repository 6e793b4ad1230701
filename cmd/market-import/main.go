package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"

	"geo_feedback/internal/application"
	"geo_feedback/internal/config"
	"geo_feedback/internal/infrastructure/marketsheet"
	"geo_feedback/internal/infrastructure/persistence"
	"geo_feedback/pkg/dbtest"
	"geo_feedback/pkg/logx"
)

// go run ./cmd/market-import -file markets.xlsx -migrate migrations/postgres/001_init.sql
func main() {
	file := flag.String("file", "", "xlsx file with markets")
	migrate := flag.String("migrate", "", "comma separated SQL files applied before import")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(ctx, *file, *migrate); err != nil {
		log.Error("import failed", logx.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, file, migrate string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	db, closeDB, err := application.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB()

	if migrate != "" {
		if err := dbtest.MigrateFromFile(ctx, db, strings.Split(migrate, ",")...); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	markets, err := marketsheet.ReadFile(ctx, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	if err := persistence.NewMarketRepository(db).Upsert(ctx, markets); err != nil {
		return fmt.Errorf("upsert markets: %w", err)
	}

	slog.InfoContext(ctx, "markets imported", slog.Int("count", len(markets)), slog.String("file", file))

	return nil
}
