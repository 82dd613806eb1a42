package domain

import (
	"math"
	"net/mail"
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusActive           ReservationStatus = "ACTIVE"
	ReservationStatusCustomerCanceled ReservationStatus = "CUSTOMER_CANCELED"
	ReservationStatusSystemCanceled   ReservationStatus = "SYSTEM_CANCELED"
)

const (
	// FlightCancelNotice is how far ahead of departure a flight may still be canceled.
	FlightCancelNotice = 72 * time.Hour
	// FreeCancelNotice is how far ahead of departure a customer cancellation keeps only the fee.
	FreeCancelNotice = 36 * time.Hour

	CancellationFeeRate = 0.05

	MinReservationCode = 1000
	MaxReservationCode = 9999
)

// CancellationFee returns the part of a payment kept when a reservation is canceled early.
func CancellationFee(totalCents int64) int64 {
	return int64(math.Round(float64(totalCents) * CancellationFeeRate))
}

type Reservation struct {
	Code              int
	Email             string
	FlightNumber      int
	Status            ReservationStatus
	TotalPaymentCents int64
	CreatedAt         time.Time
	Seats             []SeatPosition
}

// ReservationView is a reservation joined with its flight, as shown to customers.
type ReservationView struct {
	Reservation
	Origin          string
	Destination     string
	DepartureTime   time.Time
	FlightStatus    FlightStatus
	IsUrgent        bool
	CancellationFee int64
}

type HistoryFilter string

const (
	HistoryAll               HistoryFilter = "all"
	HistoryActiveFuture      HistoryFilter = "active_future"
	HistoryCompleted         HistoryFilter = "completed"
	HistoryCustomerCancelled HistoryFilter = "customer_cancelled"
	HistorySystemCancelled   HistoryFilter = "system_cancelled"
)

type Customer struct {
	Email     string
	FirstName string
	LastName  string
	Phones    []string
}

type RegisteredCustomer struct {
	Customer
	Password       string
	PassportNumber string
	BirthDate      time.Time
	RegisteredAt   time.Time
}

// CancellationTotal is what a customer still pays after canceling: only the
// fee when departure is more than FreeCancelNotice away, the full amount otherwise.
func CancellationTotal(totalCents int64, departure, now time.Time) int64 {
	if departure.After(now.Add(FreeCancelNotice)) {
		return CancellationFee(totalCents)
	}
	return totalCents
}

// NormalizeEmail trims and lower-cases an address and checks that it parses.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", Validationf("email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", Validationf("invalid email %q", s)
	}
	return s, nil
}
