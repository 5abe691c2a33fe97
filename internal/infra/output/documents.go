// Package output renders a scrape result into its published JSON documents and writes
// them to the configured destinations.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"flight-timetable/internal/domain/entity"
	"flight-timetable/internal/usecase/scrape"
)

// Published document names.
const (
	FlightsFile  = "timetable.json"
	AirportsFile = "airports.json"
	MetaFile     = "timetable_meta.json"
)

// Document is one named JSON file ready to publish.
type Document struct {
	Name string
	Data []byte
}

type flightsDoc struct {
	Flights []entity.FlightEntry `json:"flights"`
}

type airportsDoc struct {
	Airports []entity.CatalogEntry `json:"airports"`
}

// BuildMetadata derives the dataset version and validity window from now.
// Runs in January to June are valid through June 30, the rest through December 31.
func BuildMetadata(now time.Time, flightCount int) entity.Metadata {
	version, _ := strconv.Atoi(now.Format("20060102"))

	validTo := fmt.Sprintf("%04d-06-30", now.Year())
	if now.Month() > time.June {
		validTo = fmt.Sprintf("%04d-12-31", now.Year())
	}

	return entity.Metadata{
		Version:     version,
		ValidFrom:   now.Format("2006-01") + "-01",
		ValidTo:     validTo,
		FlightCount: flightCount,
	}
}

// Encode renders v as two-space indented JSON with non-ASCII text kept literal.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Documents renders the flights, airports and metadata documents for res.
func Documents(res *scrape.Result, now time.Time) ([]Document, error) {
	flights := res.Flights
	if flights == nil {
		flights = []entity.FlightEntry{}
	}
	airports := res.Airports
	if airports == nil {
		airports = []entity.CatalogEntry{}
	}

	parts := []struct {
		name string
		v    interface{}
	}{
		{FlightsFile, flightsDoc{Flights: flights}},
		{AirportsFile, airportsDoc{Airports: airports}},
		{MetaFile, BuildMetadata(now, len(flights))},
	}

	docs := make([]Document, 0, len(parts))
	for _, p := range parts {
		data, err := Encode(p.v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.name, err)
		}
		docs = append(docs, Document{Name: p.name, Data: data})
	}
	return docs, nil
}
