// Package app wires configuration into a runnable timetable Job for the commands.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"flight-timetable/internal/airport"
	"flight-timetable/internal/config"
	"flight-timetable/internal/infra/adapter/persistence/postgres"
	"flight-timetable/internal/infra/db"
	"flight-timetable/internal/infra/output"
	"flight-timetable/internal/infra/scraper"
	"flight-timetable/internal/infra/worker"
	"flight-timetable/internal/usecase/scrape"
)

// NewJob builds the scrape service and its sinks. Dataset versions are stamped in loc;
// nil means UTC. The returned cleanup closes the database pool, if one was opened, and
// is safe to call when err is non-nil.
func NewJob(ctx context.Context, logger *slog.Logger, sc *config.ScraperConfig, st *config.StorageConfig, metrics *worker.WorkerMetrics, loc *time.Location) (*worker.Job, func(), error) {
	cleanup := func() {}

	reg, err := airport.Default()
	if err != nil {
		return nil, cleanup, fmt.Errorf("load airport registry: %w", err)
	}

	svc := scrape.NewService(reg,
		scraper.NewTimetableFetcher(sc.Fetcher),
		scraper.NewPacer(sc.FetchInterval))
	svc.SourceIDs = sc.SourceIDs

	pub, err := publishers(logger, sc, st)
	if err != nil {
		return nil, cleanup, err
	}

	if loc == nil {
		loc = time.UTC
	}
	job := &worker.Job{
		Runner:    svc,
		Publisher: pub,
		Metrics:   metrics,
		Logger:    logger,
		Now:       func() time.Time { return time.Now().In(loc) },
	}

	if st.DatabaseEnabled() {
		database, err := openDatabase(ctx, st.DatabaseURL)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}
		job.Snapshots = postgres.NewSnapshotRepo(database)
		logger.Info("snapshot persistence enabled")
	}

	logger.Info("timetable job initialized",
		slog.Int("airports", reg.Len()),
		slog.String("base_url", sc.Fetcher.BaseURL),
		slog.Duration("fetch_interval", sc.FetchInterval),
		slog.String("output_dir", sc.OutputDir),
		slog.String("timezone", loc.String()),
		slog.Any("source_ids", sc.SourceIDs))
	return job, cleanup, nil
}

func publishers(logger *slog.Logger, sc *config.ScraperConfig, st *config.StorageConfig) (output.Publisher, error) {
	pubs := output.MultiPublisher{output.FilePublisher{Dir: sc.OutputDir}}

	if st.S3Enabled() {
		if err := st.Validate(); err != nil {
			return nil, err
		}
		s3, err := output.NewS3Publisher(st.S3)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, s3)
		logger.Info("s3 publishing enabled",
			slog.String("bucket", st.S3.Bucket),
			slog.String("prefix", st.S3.Prefix))
	}
	return pubs, nil
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	database, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, nil
}
