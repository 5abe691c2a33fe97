package metrics

import "time"

// RecordSourceFetch records one page fetch and the time spent on its source.
func RecordSourceFetch(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	SourceFetchTotal.WithLabelValues(status).Inc()
	SourceDuration.Observe(duration.Seconds())
}

// RecordCandidates adds n extracted rows.
func RecordCandidates(n int) {
	CandidatesTotal.Add(float64(n))
}

// RecordDropped adds n dropped candidates under reason.
func RecordDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	FlightsDroppedTotal.WithLabelValues(reason).Add(float64(n))
}

// RecordUnresolved counts one arrival name with no matching airport.
func RecordUnresolved() {
	UnresolvedAirportsTotal.Inc()
}

// UpdateRunTotals sets the gauges from a finished run.
func UpdateRunTotals(flights, airports int) {
	FlightsRetained.Set(float64(flights))
	AirportsReferenced.Set(float64(airports))
}
