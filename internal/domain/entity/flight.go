package entity

// fullWeek is the operating-day set every scraped flight carries.
// The departure pages list the regular schedule only, without per-day detail.
var fullWeek = [7]int{1, 2, 3, 4, 5, 6, 7}

// Endpoint is one end of a flight: the airport's display name, its code and the local time.
type Endpoint struct {
	Airport     string `json:"airport"`
	AirportCode string `json:"airportCode"`
	Time        string `json:"time"`
}

// FlightEntry is a single scheduled flight as published in the flights document.
type FlightEntry struct {
	FlightNumber  string   `json:"flightNumber"`
	Airline       string   `json:"airline"`
	Departure     Endpoint `json:"departure"`
	Arrival       Endpoint `json:"arrival"`
	OperatingDays []int    `json:"operatingDays"`
}

// DedupKey identifies a physical flight across sightings.
type DedupKey struct {
	FlightNumber  string
	DepartureTime string
}

// Key returns the identity used to collapse duplicate sightings.
func (f FlightEntry) Key() DedupKey {
	return DedupKey{FlightNumber: f.FlightNumber, DepartureTime: f.Departure.Time}
}

// FullWeek returns a fresh operating-day slice covering Monday (1) through Sunday (7).
func FullWeek() []int {
	days := fullWeek
	return days[:]
}

// Summary holds the observability counters derived from a finished run.
type Summary struct {
	FlightCount  int      `json:"flightCount"`
	AirportCount int      `json:"airportCount"`
	Airlines     []string `json:"airlines"`
}

// Metadata describes a published dataset version.
type Metadata struct {
	Version     int    `json:"version"`
	ValidFrom   string `json:"validFrom"`
	ValidTo     string `json:"validTo"`
	FlightCount int    `json:"flightCount"`
}
