package timetable

import (
	"regexp"
	"strconv"
)

var airlinePrefix = regexp.MustCompile(`^[A-Z]+`)

// Policy decides which flight numbers are kept.
//
// Only airlines on the allow-list are kept. Numbers at or above CodeshareFrom under the
// network Carrier are codeshare labels for a partner's own flight and are dropped, so
// the same aircraft is not counted twice.
type Policy struct {
	Airlines      map[string]struct{}
	Carrier       string
	CodeshareFrom int
}

// DefaultPolicy returns the operating and regional airlines published in the dataset.
// ANA 2000-4999 are SNA, SFJ and ADO codeshares; ANA 1-1999 are ANA's own, regional included.
func DefaultPolicy() Policy {
	return NewPolicy([]string{"JAL", "ANA", "ADO", "SNA", "SFJ", "ORC", "IBX", "JTA", "JAC", "HAC", "AMX"}, "ANA", 2000)
}

// NewPolicy builds a Policy from an airline allow-list.
func NewPolicy(airlines []string, carrier string, codeshareFrom int) Policy {
	set := make(map[string]struct{}, len(airlines))
	for _, a := range airlines {
		set[a] = struct{}{}
	}
	return Policy{Airlines: set, Carrier: carrier, CodeshareFrom: codeshareFrom}
}

// IsRelevant reports whether a flight number should be kept.
func (p Policy) IsRelevant(flightNumber string) bool {
	airline := AirlineCode(flightNumber)
	if airline == "" {
		return false
	}
	if _, ok := p.Airlines[airline]; !ok {
		return false
	}
	if airline == p.Carrier {
		suffix := flightNumber[len(airline):]
		if isDigits(suffix) {
			n, err := strconv.Atoi(suffix)
			// Out-of-range suffixes are far above any threshold.
			if err != nil || n >= p.CodeshareFrom {
				return false
			}
		}
	}
	return true
}

var defaultPolicy = DefaultPolicy()

// IsRelevant applies the default policy.
func IsRelevant(flightNumber string) bool {
	return defaultPolicy.IsRelevant(flightNumber)
}

// AirlineCode returns the leading upper-case letters of a flight number, or "".
func AirlineCode(flightNumber string) string {
	return airlinePrefix.FindString(flightNumber)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
