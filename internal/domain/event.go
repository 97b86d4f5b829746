package domain

import "time"

type FlightEventType string

const (
	FlightEventCreated  FlightEventType = "flight_created"
	FlightEventUpdated  FlightEventType = "flight_updated"
	FlightEventDeleted  FlightEventType = "flight_deleted"
	FlightEventIngested FlightEventType = "flights_ingested"
)

type FlightEvent struct {
	ID               string          `json:"id"`
	Type             FlightEventType `json:"type"`
	FlightIDs        []int64         `json:"flight_ids"`
	DepartureAirport string          `json:"departure_airport,omitempty"`
	ArrivalAirport   string          `json:"arrival_airport,omitempty"`
	DepartureTime    *time.Time      `json:"departure_time,omitempty"`
	PriceCents       int64           `json:"price_cents,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}
