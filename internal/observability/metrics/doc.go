// Package metrics holds the Prometheus collectors for a scrape run.
//
// Collectors are registered with the default registry through promauto and exposed by
// the worker's /metrics endpoint. Use the Record* helpers rather than touching the
// collectors directly:
//
//	start := time.Now()
//	page, err := fetcher.Fetch(ctx, id)
//	metrics.RecordSourceFetch(err == nil, time.Since(start))
package metrics
