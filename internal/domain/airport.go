package domain

import "time"

type Airport struct {
	ID        int64
	Code      string
	City      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
