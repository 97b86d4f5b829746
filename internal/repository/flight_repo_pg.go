package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/jackc/pgx/v5"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	CreateMany(ctx context.Context, flights []*domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, from, to string, start, end time.Time) ([]domain.Flight, error)
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightSelect = `SELECT f.id, f.departure_time, f.arrival_time, f.price_cents, f.created_at, f.updated_at,
	da.id, da.code, da.city, da.name,
	aa.id, aa.code, aa.city, aa.name
FROM flights f
JOIN airports da ON da.id = f.departure_airport_id
JOIN airports aa ON aa.id = f.arrival_airport_id`

const flightInsert = `INSERT INTO flights (departure_airport_id, arrival_airport_id, departure_time, arrival_time, price_cents)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(
		&f.ID, &f.DepartureTime, &f.ArrivalTime, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt,
		&f.DepartureAirport.ID, &f.DepartureAirport.Code, &f.DepartureAirport.City, &f.DepartureAirport.Name,
		&f.ArrivalAirport.ID, &f.ArrivalAirport.Code, &f.ArrivalAirport.City, &f.ArrivalAirport.Name,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, flightInsert,
		flight.DepartureAirport.ID, flight.ArrivalAirport.ID, flight.DepartureTime, flight.ArrivalTime, flight.PriceCents).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) CreateMany(ctx context.Context, flights []*domain.Flight) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	for i, f := range flights {
		err := tx.QueryRow(ctx, flightInsert,
			f.DepartureAirport.ID, f.ArrivalAirport.ID, f.DepartureTime, f.ArrivalTime, f.PriceCents).
			Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("insert flight %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, flightSelect+` WHERE f.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, flightSelect+` ORDER BY f.departure_time, f.id`)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `UPDATE flights
	SET departure_airport_id=$1, arrival_airport_id=$2, departure_time=$3, arrival_time=$4, price_cents=$5, updated_at=now()
	WHERE id=$6
	RETURNING updated_at`,
		flight.DepartureAirport.ID, flight.ArrivalAirport.ID, flight.DepartureTime, flight.ArrivalTime, flight.PriceCents, flight.ID).
		Scan(&flight.UpdatedAt)
	return notFound(err)
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches from/to against the airport code or the upper-cased city name.
// Callers pass upper-case terms and a half-open departure window [start, end).
func (r *PGFlightRepository) Search(ctx context.Context, from, to string, start, end time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, flightSelect+`
WHERE (upper(da.code) = $1 OR upper(da.city) = $1)
	AND (upper(aa.code) = $2 OR upper(aa.city) = $2)
	AND f.departure_time >= $3 AND f.departure_time < $4
ORDER BY f.departure_time, f.id`, from, to, start, end)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
