package worker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"flight-timetable/internal/domain/entity"
	"flight-timetable/internal/infra/output"
	"flight-timetable/internal/observability/logging"
	"flight-timetable/internal/usecase/scrape"
)

// Runner produces one scrape result. *scrape.Service implements it.
type Runner interface {
	Run(ctx context.Context) (*scrape.Result, error)
}

// SnapshotStore persists published datasets. *postgres.SnapshotRepo implements it.
type SnapshotStore interface {
	Save(ctx context.Context, meta entity.Metadata, flights []entity.FlightEntry, airports []entity.CatalogEntry) error
	LatestVersion(ctx context.Context) (int, error)
	Flights(ctx context.Context, version int) ([]entity.FlightEntry, error)
}

// Job is one complete cycle: scrape, build the documents, publish them, and optionally
// store a snapshot. Documents are published before the snapshot is saved; a failed save
// does not retract them. A snapshot whose version is already stored with the same
// flights is not rewritten.
type Job struct {
	Runner    Runner
	Publisher output.Publisher
	Snapshots SnapshotStore // optional
	Metrics   *WorkerMetrics // optional
	Logger    *slog.Logger
	// Now stamps the dataset version. It should return time in the schedule's zone;
	// nil means time.Now in the process zone.
	Now func() time.Time
}

// Run executes the cycle once.
func (j *Job) Run(ctx context.Context) (*scrape.Result, error) {
	start := time.Now()
	j.record(func(m *WorkerMetrics) { m.RecordJobRun(StatusStarted) })

	res, err := j.run(ctx)

	j.record(func(m *WorkerMetrics) { m.RecordJobDuration(time.Since(start).Seconds()) })
	if err != nil {
		j.record(func(m *WorkerMetrics) { m.RecordJobRun(StatusFailure) })
		j.logger().Error("timetable job failed", slog.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	j.record(func(m *WorkerMetrics) {
		m.RecordJobRun(StatusSuccess)
		m.RecordFlightsPublished(len(res.Flights))
		m.RecordLastSuccess()
	})
	j.logger().Info("timetable job completed",
		slog.String("run_id", res.RunID),
		slog.Int("flights", res.Summary.FlightCount),
		slog.Int("airports", res.Summary.AirportCount),
		slog.Int("unresolved", len(res.Unresolved)),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

func (j *Job) run(ctx context.Context) (*scrape.Result, error) {
	res, err := j.Runner.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}

	now := time.Now()
	if j.Now != nil {
		now = j.Now()
	}

	docs, err := output.Documents(res, now)
	if err != nil {
		return nil, fmt.Errorf("build documents: %w", err)
	}
	if err := j.Publisher.Publish(ctx, docs); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}

	if j.Snapshots != nil {
		if err := j.saveSnapshot(ctx, output.BuildMetadata(now, len(res.Flights)), res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (j *Job) saveSnapshot(ctx context.Context, meta entity.Metadata, res *scrape.Result) error {
	latest, err := j.Snapshots.LatestVersion(ctx)
	if err != nil {
		return fmt.Errorf("latest snapshot: %w", err)
	}
	if latest == meta.Version {
		stored, err := j.Snapshots.Flights(ctx, latest)
		if err != nil {
			return fmt.Errorf("load snapshot %d: %w", latest, err)
		}
		if slices.EqualFunc(stored, res.Flights, sameFlight) {
			j.logger().Info("snapshot unchanged, skipping save", slog.Int("version", meta.Version))
			return nil
		}
	}

	if err := j.Snapshots.Save(ctx, meta, res.Flights, res.Airports); err != nil {
		return fmt.Errorf("save snapshot %d: %w", meta.Version, err)
	}
	j.logger().Info("snapshot saved",
		slog.Int("version", meta.Version),
		slog.Int("previous_version", latest),
		slog.Int("flights", meta.FlightCount))
	return nil
}

func sameFlight(a, b entity.FlightEntry) bool {
	return a.FlightNumber == b.FlightNumber &&
		a.Airline == b.Airline &&
		a.Departure == b.Departure &&
		a.Arrival == b.Arrival &&
		slices.Equal(a.OperatingDays, b.OperatingDays)
}

func (j *Job) record(fn func(*WorkerMetrics)) {
	if j.Metrics != nil {
		fn(j.Metrics)
	}
}

func (j *Job) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
