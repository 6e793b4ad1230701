package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"geo_feedback/internal/domain/service/postal"
	"geo_feedback/internal/infrastructure/postalcsv"
	"geo_feedback/internal/transport/cli"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/logx"
)

// go run ./cmd/zipcodes -csv moscow_postal_codes.csv
func main() {
	csvPath := flag.String("csv", "moscow_postal_codes.csv", "postal codes CSV file")
	windows1251 := flag.Bool("cp1251", false, "CSV is Windows-1251 encoded")
	logPath := flag.String("log", "moscow_codes_app.log", "log file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	// меню занимает stdout, поэтому журнал пишется в файл
	log := slog.New(tint.NewHandler(logFile, &tint.Options{
		TimeFormat: time.DateTime,
		NoColor:    true,
	}))
	ctx = contextx.WithLogger(ctx, log)

	loader := postalcsv.NewLoader(*csvPath)
	if *windows1251 {
		loader = loader.WithWindows1251()
	}

	service, err := postal.LoadService(ctx, loader)
	if err != nil {
		log.Error("failed to load postal codes", logx.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := cli.NewMenu(os.Stdin, os.Stdout, service).Run(ctx); err != nil {
		log.Error("menu failed", logx.Error(err))
		os.Exit(1)
	}
}
