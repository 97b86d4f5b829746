package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFlightNotFound     = errors.New("flight not found")
	ErrAirportNotFound    = errors.New("airport not found")
	ErrAirportExists      = errors.New("airport code already exists")
	ErrAirportInUse       = errors.New("airport is referenced by flights")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotEnoughAirports  = errors.New("at least two airports are required")
)

type FieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationError collects every rejected field of a request.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Description)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, description string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Description: description})
}

// Err returns nil when nothing was collected.
func (e *ValidationError) Err() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

func NewValidationError(field, description string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, description)
	return v
}

// DetailedError gives a sentinel a request-specific message while keeping errors.Is working.
type DetailedError struct {
	Err     error
	Message string
}

func (e *DetailedError) Error() string { return e.Message }

func (e *DetailedError) Unwrap() error { return e.Err }

func Detailed(err error, format string, args ...any) error {
	return &DetailedError{Err: err, Message: fmt.Sprintf(format, args...)}
}
