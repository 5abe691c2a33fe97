package timetable

import (
	"regexp"
	"strings"

	"flight-timetable/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
)

// Row is one flight row as found on a timetable page, before any interpretation.
type Row struct {
	AirlineClass     string
	DepartureTime    string
	DepartureAirport string
	ArrivalTime      string
	ArrivalAirport   string
	FlightCell       string
	// Offset is the byte position of the row marker in the page.
	Offset int
}

// rowField is one step of the row scan. Each step is searched forward from the end of
// the previous one, so unrelated markup between fields is skipped. Clock digits match
// any Unicode decimal digit and are kept verbatim, so full-width "８:00" passes through.
type rowField struct {
	name    string
	pattern *regexp.Regexp
	assign  func(r *Row, groups []string)
}

var rowFields = []rowField{
	{
		name:    "airline_class",
		pattern: regexp.MustCompile(`company-data-(\w+)\s+hour-data`),
		assign:  func(r *Row, g []string) { r.AirlineClass = g[0] },
	},
	{
		name:    "departure",
		pattern: regexp.MustCompile(`(?s)class="dep-time">([\p{Nd}:]+)<span class="dep-arr-airpot">(.*?)</span>`),
		assign:  func(r *Row, g []string) { r.DepartureTime, r.DepartureAirport = g[0], g[1] },
	},
	{
		name:    "arrival",
		pattern: regexp.MustCompile(`(?s)class="arr-time">([\p{Nd}:]+)<span class="dep-arr-airpot">(.*?)</span>`),
		assign:  func(r *Row, g []string) { r.ArrivalTime, r.ArrivalAirport = g[0], g[1] },
	},
	{
		name:    "flight_cell",
		pattern: regexp.MustCompile(`(?s)class="td-required-time">(.*?)</td>`),
		assign:  func(r *Row, g []string) { r.FlightCell = g[0] },
	},
}

var markupPattern = regexp.MustCompile(`(?s)<.*?>`)

// ScanRows tokenizes a timetable page into rows, in page order.
// Stretches that do not form a complete row are skipped; once a field can no longer be
// found after the cursor, no further complete row exists and scanning stops.
func ScanRows(page string) []Row {
	var rows []Row
	pos := 0
	for pos < len(page) {
		row, next, ok := scanRow(page, pos)
		if !ok {
			break
		}
		rows = append(rows, row)
		pos = next
	}
	return rows
}

func scanRow(page string, start int) (Row, int, bool) {
	var row Row
	pos := start
	for i, f := range rowFields {
		loc := f.pattern.FindStringSubmatchIndex(page[pos:])
		if loc == nil {
			return Row{}, 0, false
		}
		if i == 0 {
			row.Offset = pos + loc[0]
		}
		groups := make([]string, 0, len(loc)/2-1)
		for g := 2; g < len(loc); g += 2 {
			groups = append(groups, page[pos+loc[g]:pos+loc[g+1]])
		}
		f.assign(&row, groups)
		pos += loc[1]
	}
	return row, pos, true
}

// CellText strips markup from a table cell and trims the result.
func CellText(cell string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
	if err != nil {
		return strings.TrimSpace(markupPattern.ReplaceAllString(cell, ""))
	}
	return strings.TrimSpace(doc.Text())
}

// Extractor builds candidate flight entries from a departure timetable page.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns one candidate per row, in page order, departing from origin.
// The arrival airport is left as the raw page string with no code; resolution happens
// later. An empty or unrecognized page yields no candidates.
func (e *Extractor) Extract(page string, origin entity.AirportRef) []entity.FlightEntry {
	rows := ScanRows(page)
	if len(rows) == 0 {
		return nil
	}

	entries := make([]entity.FlightEntry, 0, len(rows))
	for _, row := range rows {
		number := CellText(row.FlightCell)
		entries = append(entries, entity.FlightEntry{
			FlightNumber: number,
			Airline:      AirlineCode(number),
			Departure: entity.Endpoint{
				Airport:     origin.ShortName,
				AirportCode: origin.Code,
				Time:        row.DepartureTime,
			},
			Arrival: entity.Endpoint{
				Airport: row.ArrivalAirport,
				Time:    row.ArrivalTime,
			},
			OperatingDays: entity.FullWeek(),
		})
	}
	return entries
}
