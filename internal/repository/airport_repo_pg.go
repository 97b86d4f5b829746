package repository

import (
	"context"

	"github.com/Domenick1991/flightsearch/internal/domain"
)

type AirportRepository interface {
	Create(ctx context.Context, airport *domain.Airport) error
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	List(ctx context.Context) ([]domain.Airport, error)
	Update(ctx context.Context, airport *domain.Airport) error
	Delete(ctx context.Context, id int64) error
}

type PGAirportRepository struct {
	db DB
}

func NewAirportRepository(db DB) AirportRepository {
	return &PGAirportRepository{db: db}
}

func (r *PGAirportRepository) Create(ctx context.Context, airport *domain.Airport) error {
	err := r.db.QueryRow(ctx, `INSERT INTO airports (code, city, name) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		airport.Code, airport.City, airport.Name).
		Scan(&airport.ID, &airport.CreatedAt, &airport.UpdatedAt)
	if hasCode(err, pgUniqueViolation) {
		return domain.ErrAirportExists
	}
	return err
}

func (r *PGAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	var a domain.Airport
	err := r.db.QueryRow(ctx, `SELECT id, code, city, name, created_at, updated_at FROM airports WHERE id=$1`, id).
		Scan(&a.ID, &a.Code, &a.City, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *PGAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, city, name, created_at, updated_at FROM airports ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.ID, &a.Code, &a.City, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

func (r *PGAirportRepository) Update(ctx context.Context, airport *domain.Airport) error {
	err := r.db.QueryRow(ctx, `UPDATE airports SET code=$1, city=$2, name=$3, updated_at=now() WHERE id=$4 RETURNING created_at, updated_at`,
		airport.Code, airport.City, airport.Name, airport.ID).
		Scan(&airport.CreatedAt, &airport.UpdatedAt)
	if hasCode(err, pgUniqueViolation) {
		return domain.ErrAirportExists
	}
	return notFound(err)
}

func (r *PGAirportRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM airports WHERE id=$1`, id)
	if hasCode(err, pgForeignKeyViolation) {
		return domain.ErrAirportInUse
	}
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ AirportRepository = (*PGAirportRepository)(nil)
