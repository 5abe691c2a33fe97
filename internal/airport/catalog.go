package airport

import (
	"sort"

	"flight-timetable/internal/domain/entity"
)

// BuildCatalog returns the airports referenced by flights, as either endpoint,
// ordered by region precedence and then by code. Airports in regions missing from the
// precedence list come last, ordered by code.
func BuildCatalog(reg *Registry, flights []entity.FlightEntry) []entity.CatalogEntry {
	used := usedCodes(flights)

	refs := make([]entity.AirportRef, 0, len(used))
	for _, ref := range reg.AllRefs() {
		if _, ok := used[ref.Code]; ok {
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		ri, rj := reg.RegionRank(refs[i].Region), reg.RegionRank(refs[j].Region)
		if ri != rj {
			return ri < rj
		}
		return refs[i].Code < refs[j].Code
	})

	catalog := make([]entity.CatalogEntry, 0, len(refs))
	for _, ref := range refs {
		catalog = append(catalog, ref.Catalog())
	}
	return catalog
}

// Summarize computes the run counters straight from the final flight list.
func Summarize(flights []entity.FlightEntry) entity.Summary {
	airlines := make(map[string]struct{})
	for _, f := range flights {
		airlines[f.Airline] = struct{}{}
	}

	names := make([]string, 0, len(airlines))
	for a := range airlines {
		names = append(names, a)
	}
	sort.Strings(names)

	return entity.Summary{
		FlightCount:  len(flights),
		AirportCount: len(usedCodes(flights)),
		Airlines:     names,
	}
}

func usedCodes(flights []entity.FlightEntry) map[string]struct{} {
	used := make(map[string]struct{}, len(flights))
	for _, f := range flights {
		used[f.Departure.AirportCode] = struct{}{}
		used[f.Arrival.AirportCode] = struct{}{}
	}
	return used
}
