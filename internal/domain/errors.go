package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the services wraps exactly one of them.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrPolicy         = errors.New("policy violation")
	ErrExhaustedRange = errors.New("number range exhausted")
	ErrEmptyInventory = errors.New("empty seat inventory")
)

var (
	ErrFlightNotFound      = fmt.Errorf("%w: flight", ErrNotFound)
	ErrAircraftNotFound    = fmt.Errorf("%w: aircraft", ErrNotFound)
	ErrRouteNotFound       = fmt.Errorf("%w: route", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("%w: reservation", ErrNotFound)
	ErrDraftOrderNotFound  = fmt.Errorf("%w: order", ErrNotFound)

	ErrFlightAlreadyCanceled = fmt.Errorf("%w: flight is already canceled", ErrPolicy)
	ErrCancelTooSoon         = fmt.Errorf("%w: flight departs within 72 hours", ErrPolicy)
	ErrFlightNotActive       = fmt.Errorf("%w: flight is not active", ErrPolicy)
	ErrInsufficientCrew      = fmt.Errorf("%w: crew below the aircraft minimum", ErrPolicy)
	ErrLongFlightAircraft    = fmt.Errorf("%w: long flight requires a LARGE aircraft", ErrPolicy)
	ErrResourceUnavailable   = fmt.Errorf("%w: resource is not available for the flight window", ErrPolicy)
	ErrReservationNotActive  = fmt.Errorf("%w: reservation is not active", ErrPolicy)

	ErrSeatTaken = fmt.Errorf("%w: seat already taken", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrValidation)
)

// CancelReason explains why a flight cancellation did not happen.
type CancelReason string

const (
	CancelReasonNone            CancelReason = ""
	CancelReasonNotFound        CancelReason = "NOT_FOUND"
	CancelReasonAlreadyCanceled CancelReason = "ALREADY_CANCELED"
	CancelReasonTooSoon         CancelReason = "TOO_SOON"
)

// Err returns the error matching the reason, nil for CancelReasonNone.
func (r CancelReason) Err() error {
	switch r {
	case CancelReasonNone:
		return nil
	case CancelReasonNotFound:
		return ErrFlightNotFound
	case CancelReasonAlreadyCanceled:
		return ErrFlightAlreadyCanceled
	case CancelReasonTooSoon:
		return ErrCancelTooSoon
	default:
		return fmt.Errorf("%w: %s", ErrPolicy, string(r))
	}
}

type FlightCancellation struct {
	FlightNumber        int
	Reason              CancelReason
	ReservationsUpdated int64
	// Affected lists the reservations moved to SYSTEM_CANCELED.
	Affected []ReservationRef
}

type ReservationRef struct {
	Code  int
	Email string
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Policyf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPolicy, fmt.Sprintf(format, args...))
}
