// Package logging builds the slog loggers used by the scraper and the worker.
//
// Loggers write JSON to stdout by default. LOG_LEVEL=debug lowers the level, and
// LOG_FORMAT=text switches to the text handler for local runs. A run's logger carries
// its run id so every line of one scrape can be grouped:
//
//	logger := logging.WithRun(logging.NewLogger(), runID)
//	ctx = logging.WithLogger(ctx, logger)
//	logging.FromContext(ctx).Info("source processed", slog.Int("source_id", id))
package logging
