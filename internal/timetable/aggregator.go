package timetable

import (
	"sort"
	"sync"

	"flight-timetable/internal/domain/entity"
)

// Aggregator collects flights from every page, keeping the first sighting of each
// (flight number, departure time) pair.
type Aggregator struct {
	mu      sync.Mutex
	flights []entity.FlightEntry
	seen    map[entity.DedupKey]struct{}
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[entity.DedupKey]struct{})}
}

// Add stores entry unless an entry with the same key was added before.
// It reports whether entry was stored.
func (a *Aggregator) Add(entry entity.FlightEntry) bool {
	key := entry.Key()

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, dup := a.seen[key]; dup {
		return false
	}
	a.seen[key] = struct{}{}
	a.flights = append(a.flights, entry)
	return true
}

// Len returns the number of stored flights.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.flights)
}

// Finalize returns the stored flights ordered by airline, flight number and departure
// time, independent of the order pages were fetched in.
func (a *Aggregator) Finalize() []entity.FlightEntry {
	a.mu.Lock()
	out := append([]entity.FlightEntry(nil), a.flights...)
	a.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// Less orders flights by (airline, flight number, departure time).
func Less(x, y entity.FlightEntry) bool {
	if x.Airline != y.Airline {
		return x.Airline < y.Airline
	}
	if x.FlightNumber != y.FlightNumber {
		return x.FlightNumber < y.FlightNumber
	}
	return x.Departure.Time < y.Departure.Time
}
