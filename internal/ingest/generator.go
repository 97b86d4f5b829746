package ingest

import (
	"math/rand/v2"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
)

const (
	minDaysAhead = 1
	maxDaysAhead = 30
	minDuration  = 45 * time.Minute
	maxDuration  = 14 * time.Hour
	minPrice     = 4900
	maxPrice     = 149900
	grid         = 5 * time.Minute
)

// Generator fabricates plausible flights between known airports.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededGenerator returns a generator with a reproducible sequence.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed))}
}

// Generate returns n flights departing between one and thirty days after now.
// It needs at least two airports.
func (g *Generator) Generate(airports []domain.Airport, n int, now time.Time) ([]flights.FlightInput, error) {
	if len(airports) < 2 {
		return nil, domain.ErrNotEnoughAirports
	}

	day := now.UTC().Truncate(24 * time.Hour)
	out := make([]flights.FlightInput, 0, n)
	for range n {
		from := g.rnd.IntN(len(airports))
		to := g.rnd.IntN(len(airports) - 1)
		if to >= from {
			to++
		}

		slots := int64(24 * time.Hour / grid)
		departure := day.
			AddDate(0, 0, minDaysAhead+g.rnd.IntN(maxDaysAhead-minDaysAhead+1)).
			Add(time.Duration(g.rnd.Int64N(slots)) * grid)

		durationSlots := int64((maxDuration - minDuration) / grid)
		duration := minDuration + time.Duration(g.rnd.Int64N(durationSlots+1))*grid

		out = append(out, flights.FlightInput{
			DepartureAirportID: airports[from].ID,
			ArrivalAirportID:   airports[to].ID,
			DepartureTime:      departure,
			ArrivalTime:        departure.Add(duration),
			PriceCents:         (minPrice + g.rnd.Int64N(maxPrice-minPrice+1)) / 100 * 100,
		})
	}
	return out, nil
}
