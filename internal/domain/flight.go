package domain

import "time"

type Flight struct {
	ID               int64
	DepartureAirport Airport
	ArrivalAirport   Airport
	DepartureTime    time.Time
	ArrivalTime      time.Time
	PriceCents       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Duration is the scheduled block time of the flight.
func (f Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// SearchQuery describes a one-way or round-trip search. ReturnDate is nil for one-way.
type SearchQuery struct {
	Departure     string
	Arrival       string
	DepartureDate time.Time
	ReturnDate    *time.Time
}

type SearchResult struct {
	DepartureFlights []Flight
	ReturnFlights    []Flight
}

// DayBounds returns the half-open UTC interval [00:00, next 00:00) containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
