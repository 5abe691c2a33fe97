package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons for FlightsDroppedTotal.
const (
	ReasonIrrelevant = "irrelevant"
	ReasonUnresolved = "unresolved"
	ReasonDuplicate  = "duplicate"
)

// Source fetch metrics
var (
	// SourceFetchTotal counts timetable page fetches by outcome
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetable_source_fetch_total",
			Help: "Total number of timetable page fetches",
		},
		[]string{"status"},
	)

	// SourceDuration measures the time to fetch and process one source
	SourceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timetable_source_duration_seconds",
			Help:    "Time taken to fetch and process one timetable source",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

// Pipeline metrics
var (
	// CandidatesTotal counts raw rows extracted from timetable pages
	CandidatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timetable_candidates_total",
			Help: "Total number of candidate flight rows extracted",
		},
	)

	// FlightsDroppedTotal counts candidates not retained, by reason
	FlightsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetable_flights_dropped_total",
			Help: "Total number of candidate flights dropped",
		},
		[]string{"reason"},
	)

	// UnresolvedAirportsTotal counts arrival names that matched no airport
	UnresolvedAirportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timetable_unresolved_airports_total",
			Help: "Total number of arrival airport names that could not be resolved",
		},
	)

	// FlightsRetained is the flight count of the last completed run
	FlightsRetained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "timetable_flights_retained",
			Help: "Number of flights retained by the last run",
		},
	)

	// AirportsReferenced is the catalog size of the last completed run
	AirportsReferenced = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "timetable_airports_referenced",
			Help: "Number of airports referenced by the last run",
		},
	)
)
