// Package scrape runs the timetable pipeline: fetch every source page, extract and filter
// candidate flights, resolve arrival airports, deduplicate, and build the airport catalog.
package scrape

import "errors"

var (
	// ErrNoSources is returned by Run when there is nothing to fetch.
	ErrNoSources = errors.New("no timetable sources configured")

	// ErrRunCanceled wraps the context error when a run is interrupted between sources.
	ErrRunCanceled = errors.New("scrape run canceled")
)
