package api

import (
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/Domenick1991/flightsearch/internal/security"
	"github.com/Domenick1991/flightsearch/internal/service/airports"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
)

type flightRequest struct {
	DepartureAirportID int64     `json:"departure_airport_id" binding:"required,gt=0"`
	ArrivalAirportID   int64     `json:"arrival_airport_id" binding:"required,gt=0"`
	DepartureTime      time.Time `json:"departure_time" binding:"required"`
	ArrivalTime        time.Time `json:"arrival_time" binding:"required"`
	PriceCents         *int64    `json:"price_cents" binding:"required,gte=0"`
}

func (r flightRequest) input() flights.FlightInput {
	return flights.FlightInput{
		DepartureAirportID: r.DepartureAirportID,
		ArrivalAirportID:   r.ArrivalAirportID,
		DepartureTime:      r.DepartureTime,
		ArrivalTime:        r.ArrivalTime,
		PriceCents:         *r.PriceCents,
	}
}

type searchRequest struct {
	Departure     string `form:"departure" binding:"required"`
	Arrival       string `form:"arrival" binding:"required"`
	DepartureDate string `form:"departure_date" binding:"required,datetime=2006-01-02"`
	ReturnDate    string `form:"return_date" binding:"omitempty,datetime=2006-01-02"`
}

// query assumes the dates already passed binding.
func (r searchRequest) query() domain.SearchQuery {
	q := domain.SearchQuery{Departure: r.Departure, Arrival: r.Arrival}
	q.DepartureDate, _ = time.Parse(time.DateOnly, r.DepartureDate)
	if r.ReturnDate != "" {
		ret, _ := time.Parse(time.DateOnly, r.ReturnDate)
		q.ReturnDate = &ret
	}
	return q
}

type airportRequest struct {
	Code string `json:"code" binding:"required,min=3,max=4,alpha"`
	City string `json:"city" binding:"required,max=100"`
	Name string `json:"name" binding:"required,max=256"`
}

func (r airportRequest) input() airports.AirportInput {
	return airports.AirportInput{Code: r.Code, City: r.City, Name: r.Name}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type airportResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	City string `json:"city"`
	Name string `json:"name"`
}

type flightResponse struct {
	ID               int64           `json:"id"`
	DepartureAirport airportResponse `json:"departure_airport"`
	ArrivalAirport   airportResponse `json:"arrival_airport"`
	DepartureTime    time.Time       `json:"departure_time"`
	ArrivalTime      time.Time       `json:"arrival_time"`
	DurationMinutes  int64           `json:"duration_minutes"`
	PriceCents       int64           `json:"price_cents"`
}

type searchResponse struct {
	DepartureFlights []flightResponse `json:"departure_flights"`
	ReturnFlights    []flightResponse `json:"return_flights,omitempty"`
}

type userResponse struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        userResponse `json:"user"`
}

func toAirportResponse(a domain.Airport) airportResponse {
	return airportResponse{ID: a.ID, Code: a.Code, City: a.City, Name: a.Name}
}

func toAirportResponses(list []domain.Airport) []airportResponse {
	out := make([]airportResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAirportResponse(a))
	}
	return out
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:               f.ID,
		DepartureAirport: toAirportResponse(f.DepartureAirport),
		ArrivalAirport:   toAirportResponse(f.ArrivalAirport),
		DepartureTime:    f.DepartureTime.UTC(),
		ArrivalTime:      f.ArrivalTime.UTC(),
		DurationMinutes:  int64(f.Duration() / time.Minute),
		PriceCents:       f.PriceCents,
	}
}

func toFlightResponses(list []domain.Flight) []flightResponse {
	if list == nil {
		return nil
	}
	out := make([]flightResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFlightResponse(f))
	}
	return out
}

func toSearchResponse(r *domain.SearchResult) searchResponse {
	resp := searchResponse{
		DepartureFlights: toFlightResponses(r.DepartureFlights),
		ReturnFlights:    toFlightResponses(r.ReturnFlights),
	}
	if resp.DepartureFlights == nil {
		resp.DepartureFlights = []flightResponse{}
	}
	return resp
}

func toUserResponse(p *security.Principal) userResponse {
	return userResponse{ID: p.ID, Username: p.Username, Authorities: p.Authorities}
}
