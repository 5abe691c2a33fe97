// Command worker publishes a fresh timetable on a cron schedule and serves
// /health, /health/ready and /metrics.
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
	_ "time/tzdata"

	"flight-timetable/internal/app"
	"flight-timetable/internal/config"
	workerPkg "flight-timetable/internal/infra/worker"
	"flight-timetable/internal/observability/logging"
	pkgconfig "flight-timetable/internal/pkg/config"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, metrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("scrape_timeout", workerConfig.ScrapeTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Bool("run_on_start", workerConfig.RunOnStart))

	tr := pkgconfig.NewTracker(pkgconfig.NewConfigMetrics("scraper"))
	sc := config.LoadScraperConfig(tr)
	st := config.LoadStorageConfig(tr)
	tr.Done()
	for _, w := range tr.Warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}

	job, cleanup, err := app.NewJob(ctx, logger, sc, st, metrics, workerConfig.Location())
	defer cleanup()
	if err != nil {
		logger.Error("failed to initialize timetable job", slog.String("error", logging.SanitizeError(err)))
		os.Exit(1)
	}

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, prometheus.DefaultGatherer)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	startCronWorker(ctx, logger, job, workerConfig, healthServer)
}

// startCronWorker schedules the job and blocks until ctx is canceled.
func startCronWorker(ctx context.Context, logger *slog.Logger, job *workerPkg.Job, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) {
	loc := cfg.Location()

	// SkipIfStillRunning: a slow run must not overlap the next tick.
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(cfg.CronSchedule, func() { runJob(ctx, job, cfg) }); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", loc.String()))

	if cfg.RunOnStart {
		go runJob(ctx, job, cfg)
	}

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("worker stopping, waiting for running job")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runJob executes one run under the configured timeout. Failures are logged and counted
// by the job itself; the schedule continues.
func runJob(ctx context.Context, job *workerPkg.Job, cfg *workerPkg.WorkerConfig) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ScrapeTimeout)
	defer cancel()
	_, _ = job.Run(ctx)
}
