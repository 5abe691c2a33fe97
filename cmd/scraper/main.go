// Command scraper runs the timetable pipeline once and writes the three documents.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"flight-timetable/internal/app"
	"flight-timetable/internal/config"
	"flight-timetable/internal/infra/worker"
	"flight-timetable/internal/observability/logging"
	pkgconfig "flight-timetable/internal/pkg/config"
	"flight-timetable/internal/usecase/scrape"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	tr := pkgconfig.NewTracker(nil)
	sc := config.LoadScraperConfig(tr)
	st := config.LoadStorageConfig(tr)
	// Versions follow the worker's zone so one-off runs match scheduled ones.
	wc := worker.DefaultConfig()
	wc.Timezone = pkgconfig.Use(tr, "timezone",
		pkgconfig.LoadString("WORKER_TIMEZONE", wc.Timezone, pkgconfig.ValidateTimezone))
	for _, w := range tr.Warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}

	flag.StringVar(&sc.OutputDir, "out", sc.OutputDir, "directory for timetable.json, airports.json and timetable_meta.json")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, logger, sc, st, wc.Location()))
}

func run(ctx context.Context, logger *slog.Logger, sc *config.ScraperConfig, st *config.StorageConfig, loc *time.Location) int {
	if err := sc.Validate(); err != nil {
		logger.Error("invalid scraper configuration", slog.Any("error", err))
		return 2
	}

	job, cleanup, err := app.NewJob(ctx, logger, sc, st, nil, loc)
	defer cleanup()
	if err != nil {
		logger.Error("failed to initialize", slog.String("error", logging.SanitizeError(err)))
		return 1
	}

	res, err := job.Run(ctx)
	if err != nil {
		if errors.Is(err, scrape.ErrRunCanceled) {
			logger.Warn("run interrupted")
			return 130
		}
		return 1
	}

	for _, u := range res.Unresolved {
		logger.Warn("unresolved arrival airport",
			slog.Int("source_id", u.SourceID),
			slog.String("flight_number", u.FlightNumber),
			slog.String("raw_name", u.RawName))
	}
	logger.Info("timetable written",
		slog.String("output_dir", sc.OutputDir),
		slog.Int("flights", res.Summary.FlightCount),
		slog.Int("airports", res.Summary.AirportCount),
		slog.Any("airlines", res.Summary.Airlines))
	return 0
}
