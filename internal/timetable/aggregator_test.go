package timetable

import (
	"sync"
	"testing"

	"flight-timetable/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(number, dep, arrCode string) entity.FlightEntry {
	return entity.FlightEntry{
		FlightNumber:  number,
		Airline:       AirlineCode(number),
		Departure:     entity.Endpoint{Airport: "羽田", AirportCode: "HND", Time: dep},
		Arrival:       entity.Endpoint{AirportCode: arrCode},
		OperatingDays: entity.FullWeek(),
	}
}

func TestAggregator_DropsDuplicates(t *testing.T) {
	agg := NewAggregator()

	first := entry("JAL101", "08:00", "ITM")
	second := entry("JAL101", "08:00", "KIX")

	assert.True(t, agg.Add(first))
	assert.False(t, agg.Add(second))
	assert.True(t, agg.Add(entry("JAL101", "18:00", "ITM")))

	got := agg.Finalize()
	require.Len(t, got, 2)
	assert.Equal(t, "ITM", got[0].Arrival.AirportCode, "first sighting wins")
}

func TestAggregator_FinalizeSorted(t *testing.T) {
	agg := NewAggregator()
	for _, e := range []entity.FlightEntry{
		entry("JAL103", "10:00", "ITM"),
		entry("ANA95", "08:30", "KIX"),
		entry("JAL101", "18:00", "ITM"),
		entry("ADO11", "07:00", "CTS"),
		entry("JAL101", "08:00", "ITM"),
		entry("ANA1951", "06:00", "OKA"),
	} {
		agg.Add(e)
	}

	got := agg.Finalize()

	var keys []string
	for _, f := range got {
		keys = append(keys, f.FlightNumber+"@"+f.Departure.Time)
	}
	// Lexicographic: "ANA1951" < "ANA95".
	assert.Equal(t, []string{
		"ADO11@07:00",
		"ANA1951@06:00",
		"ANA95@08:30",
		"JAL101@08:00",
		"JAL101@18:00",
		"JAL103@10:00",
	}, keys)

	for i := 1; i < len(got); i++ {
		assert.False(t, Less(got[i], got[i-1]), "not sorted at %d", i)
	}
}

func TestAggregator_FinalizeIsSnapshot(t *testing.T) {
	agg := NewAggregator()
	agg.Add(entry("JAL101", "08:00", "ITM"))

	out := agg.Finalize()
	out[0].FlightNumber = "changed"

	assert.Equal(t, "JAL101", agg.Finalize()[0].FlightNumber)
	assert.Equal(t, 1, agg.Len())
}

func TestAggregator_ConcurrentAdd(t *testing.T) {
	agg := NewAggregator()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				agg.Add(entry("JAL101", "08:00", "ITM"))
				agg.Add(entry("JAL103", "10:00", "ITM"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, agg.Len())
}

func TestAggregator_NoDuplicateKeys(t *testing.T) {
	agg := NewAggregator()
	for _, n := range []string{"JAL101", "JAL101", "ANA11", "JAL101", "ANA11"} {
		agg.Add(entry(n, "08:00", "ITM"))
	}

	seen := map[entity.DedupKey]bool{}
	for _, f := range agg.Finalize() {
		assert.False(t, seen[f.Key()], "duplicate %v", f.Key())
		seen[f.Key()] = true
	}
	assert.Len(t, seen, 2)
}
