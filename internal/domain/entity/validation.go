package entity

import (
	"fmt"
	"regexp"
)

var airportCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateAirportCode checks that code is a three-letter upper-case airport code.
func ValidateAirportCode(code string) error {
	if code == "" {
		return &ValidationError{Field: "code", Message: "airport code is required"}
	}
	if !airportCodePattern.MatchString(code) {
		return &ValidationError{
			Field:   "code",
			Message: fmt.Sprintf("airport code %q must be three upper-case letters", code),
		}
	}
	return nil
}
