// Package apperr maps domain errors onto gRPC codes, HTTP statuses and wire errors.
package apperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const internalMessage = "internal server error"

func Code(err error) codes.Code {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return codes.OK
	case errors.As(err, &verr):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrFlightNotFound), errors.Is(err, domain.ErrAirportNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrAirportExists), errors.Is(err, domain.ErrUserExists):
		return codes.AlreadyExists
	case errors.Is(err, domain.ErrAirportInUse), errors.Is(err, domain.ErrNotEnoughAirports):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Internal
}

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return runtime.HTTPStatusFromCode(Code(err))
}

// Message is safe to return to clients: internal failures are masked.
func Message(err error) string {
	switch Code(err) {
	case codes.Internal, codes.Unknown:
		return internalMessage
	}
	return err.Error()
}

// Violations returns the field violations carried by err, if any.
func Violations(err error) []domain.FieldViolation {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Violations
	}
	return nil
}

// GRPCError converts err to a status error. Validation failures carry errdetails.BadRequest.
func GRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	st := status.New(Code(err), Message(err))
	violations := Violations(err)
	if len(violations) == 0 {
		return st.Err()
	}

	br := &errdetails.BadRequest{}
	for _, v := range violations {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.Field,
			Description: v.Description,
		})
	}
	if withDetails, err := st.WithDetails(br); err == nil {
		return withDetails.Err()
	}
	return st.Err()
}
