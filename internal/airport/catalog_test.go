package airport

import (
	"testing"

	"flight-timetable/internal/domain/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flight(number, airline, from, to, dep string) entity.FlightEntry {
	return entity.FlightEntry{
		FlightNumber:  number,
		Airline:       airline,
		Departure:     entity.Endpoint{AirportCode: from, Time: dep},
		Arrival:       entity.Endpoint{AirportCode: to},
		OperatingDays: entity.FullWeek(),
	}
}

func TestBuildCatalog_RegionThenCode(t *testing.T) {
	reg := mustDefault(t)
	flights := []entity.FlightEntry{
		flight("JAL101", "JAL", "HND", "KIX", "08:00"),
		flight("ANA461", "ANA", "OKA", "CTS", "09:00"),
		flight("JAL103", "JAL", "HND", "ITM", "10:00"),
	}

	got := BuildCatalog(reg, flights)

	codes := make([]string, 0, len(got))
	for _, c := range got {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"CTS", "HND", "ITM", "KIX", "OKA"}, codes)

	want := entity.CatalogEntry{Code: "KIX", ShortName: "関西", FullName: "関西国際空港", Region: "近畿"}
	if diff := cmp.Diff(want, got[3]); diff != "" {
		t.Fatalf("catalog entry mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCatalog_UnknownRegionLast(t *testing.T) {
	reg, err := Load([]byte(`
airports:
  - {id: 1, code: ZZA, shortName: 甲, fullName: 甲空港, region: 海外}
  - {id: 2, code: AAB, shortName: 乙, fullName: 乙空港, region: 海外}
  - {id: 3, code: MMC, shortName: 丙, fullName: 丙空港, region: 西}
  - {id: 4, code: BBD, shortName: 丁, fullName: 丁空港, region: 東}
regions: [東, 西]
`))
	require.NoError(t, err)

	got := BuildCatalog(reg, []entity.FlightEntry{
		flight("JAL1", "JAL", "ZZA", "MMC", "08:00"),
		flight("JAL2", "JAL", "AAB", "BBD", "09:00"),
	})

	codes := make([]string, 0, len(got))
	for _, c := range got {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"BBD", "MMC", "AAB", "ZZA"}, codes)
}

func TestBuildCatalog_OnlyReferencedAirports(t *testing.T) {
	reg := mustDefault(t)

	assert.Empty(t, BuildCatalog(reg, nil))

	got := BuildCatalog(reg, []entity.FlightEntry{flight("JAC3701", "JAC", "KOJ", "ASJ", "07:30")})
	require.Len(t, got, 2)
	// Same region, so code order.
	assert.Equal(t, "ASJ", got[0].Code)
	assert.Equal(t, "KOJ", got[1].Code)
}

func TestSummarize(t *testing.T) {
	got := Summarize([]entity.FlightEntry{
		flight("JAL101", "JAL", "HND", "ITM", "08:00"),
		flight("ANA11", "ANA", "HND", "ITM", "08:30"),
		flight("JAL103", "JAL", "ITM", "HND", "10:00"),
		flight("ADO11", "ADO", "HND", "CTS", "07:00"),
	})

	assert.Equal(t, entity.Summary{
		FlightCount:  4,
		AirportCount: 3,
		Airlines:     []string{"ADO", "ANA", "JAL"},
	}, got)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)

	assert.Equal(t, 0, got.FlightCount)
	assert.Equal(t, 0, got.AirportCount)
	assert.Empty(t, got.Airlines)
}
