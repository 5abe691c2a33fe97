package entity

// AirportRef is one row of the static airport reference table.
// ID is the identifier the timetable site uses for the airport's departure page.
type AirportRef struct {
	ID        int    `json:"id" yaml:"id"`
	Code      string `json:"code" yaml:"code"`
	ShortName string `json:"shortName" yaml:"shortName"`
	FullName  string `json:"fullName" yaml:"fullName"`
	Region    string `json:"region" yaml:"region"`
}

// CatalogEntry is the published projection of an AirportRef.
type CatalogEntry struct {
	Code      string `json:"code"`
	ShortName string `json:"name"`
	FullName  string `json:"fullName"`
	Region    string `json:"region"`
}

// Catalog projects the reference row to its published form.
func (a AirportRef) Catalog() CatalogEntry {
	return CatalogEntry{
		Code:      a.Code,
		ShortName: a.ShortName,
		FullName:  a.FullName,
		Region:    a.Region,
	}
}

// Validate checks the fields every reference row must carry.
func (a AirportRef) Validate() error {
	if a.ID <= 0 {
		return &ValidationError{Field: "id", Message: "id must be positive"}
	}
	if err := ValidateAirportCode(a.Code); err != nil {
		return err
	}
	if a.ShortName == "" {
		return &ValidationError{Field: "shortName", Message: "short name is required"}
	}
	if a.FullName == "" {
		return &ValidationError{Field: "fullName", Message: "full name is required"}
	}
	return nil
}
