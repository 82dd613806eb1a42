package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/jackc/pgx/v5"
)

const maxCodeAttempts = 200

type ReservationRepository interface {
	Create(ctx context.Context, in NewReservation) (*domain.Reservation, error)
	Lookup(ctx context.Context, email string, code int, now time.Time) ([]domain.ReservationView, error)
	History(ctx context.Context, email string, filter domain.HistoryFilter, now time.Time) ([]domain.ReservationView, error)
	Cancel(ctx context.Context, email string, code int, now time.Time) (*domain.Reservation, error)
}

// NewReservation is a seat selection to be committed as one reservation.
// Customer is optional; when set its names and phones replace the stored ones.
type NewReservation struct {
	Email        string
	FlightNumber int
	Seats        []domain.SeatPosition
	Customer     *domain.Customer
	CreatedAt    time.Time
}

type PGReservationRepository struct {
	gw       *Gateway
	nextCode func() int
}

type ReservationRepoOption func(*PGReservationRepository)

// WithCodeSource replaces the random reservation code sampler.
func WithCodeSource(next func() int) ReservationRepoOption {
	return func(r *PGReservationRepository) {
		r.nextCode = next
	}
}

func NewReservationRepository(gw *Gateway, opts ...ReservationRepoOption) ReservationRepository {
	r := &PGReservationRepository{
		gw: gw,
		nextCode: func() int {
			return domain.MinReservationCode + rand.IntN(domain.MaxReservationCode-domain.MinReservationCode+1)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create prices the seats, allocates a code and stores the reservation with
// its seat claims in one transaction. A seat already claimed by an active
// reservation fails the whole call with domain.ErrSeatTaken. A flight that
// departs at or before CreatedAt is refused.
func (r *PGReservationRepository) Create(ctx context.Context, in NewReservation) (*domain.Reservation, error) {
	res := &domain.Reservation{
		Email:        in.Email,
		FlightNumber: in.FlightNumber,
		Status:       domain.ReservationStatusActive,
		CreatedAt:    in.CreatedAt,
		Seats:        in.Seats,
	}

	err := r.gw.WithinTx(ctx, func(q Querier) error {
		var aircraftID int64
		var status domain.FlightStatus
		var departure time.Time
		err := q.QueryRow(ctx, `SELECT aircraft_id, status, departure_time FROM flight WHERE flight_number = $1`, in.FlightNumber).
			Scan(&aircraftID, &status, &departure)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w %04d", domain.ErrFlightNotFound, in.FlightNumber)
			}
			return fmt.Errorf("failed to get flight: %w", err)
		}
		if status != domain.FlightStatusActive {
			return domain.ErrFlightNotActive
		}
		if !departure.After(in.CreatedAt) {
			return domain.Policyf("flight %04d has already departed", in.FlightNumber)
		}

		total, err := priceSeats(ctx, q, in.FlightNumber, in.Seats)
		if err != nil {
			return err
		}
		res.TotalPaymentCents = total

		code, err := r.allocateCode(ctx, q)
		if err != nil {
			return err
		}
		res.Code = code

		if err := upsertCustomer(ctx, q, in.Email, in.Customer); err != nil {
			return err
		}

		if _, err := q.Exec(ctx, `
			INSERT INTO reservations (reservation_code, reservation_status, total_payment_cents, email, flight_number, created_at)
			VALUES ($1, 'ACTIVE', $2, $3, $4, $5)`,
			code, total, in.Email, in.FlightNumber, in.CreatedAt); err != nil {
			if IsUniqueViolation(err, reservationsPKey) {
				return fmt.Errorf("%w: reservation code %d was taken concurrently", domain.ErrConflict, code)
			}
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		for _, seat := range in.Seats {
			if _, err := q.Exec(ctx, `
				INSERT INTO seats_in_reservation (reservation_code, flight_number, aircraft_id, class_type, seat_row, seat_column, active)
				VALUES ($1, $2, $3, $4, $5, $6, TRUE)`,
				code, in.FlightNumber, aircraftID, seat.Class, seat.Row, seat.Column); err != nil {
				if IsUniqueViolation(err, activeSeatClaimIndex) {
					return fmt.Errorf("%w: %s", domain.ErrSeatTaken, seat)
				}
				return fmt.Errorf("failed to claim seat %s: %w", seat, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// priceSeats sums the inventory prices of the requested seats. Every seat
// must be part of the flight's inventory.
func priceSeats(ctx context.Context, q Querier, flightNumber int, seats []domain.SeatPosition) (int64, error) {
	classes := make([]string, len(seats))
	rowsIdx := make([]int32, len(seats))
	cols := make([]int32, len(seats))
	for i, s := range seats {
		classes[i] = string(s.Class)
		rowsIdx[i] = int32(s.Row)
		cols[i] = int32(s.Column)
	}

	rows, err := q.Query(ctx, `
		SELECT sf.class_type, sf.seat_row, sf.seat_column, sf.price_cents
		FROM seats_in_flights sf
		JOIN unnest($2::text[], $3::int[], $4::int[]) AS req(class_type, seat_row, seat_column)
		  ON req.class_type = sf.class_type AND req.seat_row = sf.seat_row AND req.seat_column = sf.seat_column
		WHERE sf.flight_number = $1`,
		flightNumber, classes, rowsIdx, cols)
	if err != nil {
		return 0, fmt.Errorf("failed to price seats: %w", err)
	}
	defer rows.Close()

	priced := make(map[domain.SeatPosition]int64, len(seats))
	for rows.Next() {
		var p domain.SeatPosition
		var price int64
		if err := rows.Scan(&p.Class, &p.Row, &p.Column, &price); err != nil {
			return 0, fmt.Errorf("failed to scan seat price: %w", err)
		}
		priced[p] = price
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var total int64
	for _, s := range seats {
		price, ok := priced[s]
		if !ok {
			return 0, domain.Validationf("seat %s is not on flight %04d", s, flightNumber)
		}
		total += price
	}
	return total, nil
}

func (r *PGReservationRepository) allocateCode(ctx context.Context, q Querier) (int, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := r.nextCode()
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE reservation_code = $1)`, code).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check reservation code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: no free reservation code after %d attempts", domain.ErrExhaustedRange, maxCodeAttempts)
}

func upsertCustomer(ctx context.Context, q Querier, email string, c *domain.Customer) error {
	if c == nil {
		if _, err := q.Exec(ctx, `INSERT INTO customer (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`, email); err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
		return nil
	}

	if _, err := q.Exec(ctx, `
		INSERT INTO customer (email, first_name, last_name) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name`,
		email, c.FirstName, c.LastName); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM customer_phone_number WHERE email = $1`, email); err != nil {
		return fmt.Errorf("failed to clear customer phones: %w", err)
	}
	for _, phone := range c.Phones {
		if _, err := q.Exec(ctx, `
			INSERT INTO customer_phone_number (email, phone_number) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, email, phone); err != nil {
			return fmt.Errorf("failed to insert customer phone: %w", err)
		}
	}
	return nil
}

const reservationViewSelect = `
	SELECT r.reservation_code, r.email, r.flight_number, r.reservation_status, r.total_payment_cents, r.created_at,
	       f.origin_airport, f.destination_airport, f.departure_time, f.status
	FROM reservations r
	JOIN flight f ON f.flight_number = r.flight_number`

// Lookup returns the reservation when it is active and its flight is still ahead.
func (r *PGReservationRepository) Lookup(ctx context.Context, email string, code int, now time.Time) ([]domain.ReservationView, error) {
	return r.views(ctx, now, reservationViewSelect+`
		WHERE r.email = $1 AND r.reservation_code = $2
		  AND r.reservation_status = 'ACTIVE' AND f.status = 'ACTIVE' AND f.departure_time > $3
		ORDER BY f.departure_time`, email, code, now)
}

var historyConditions = map[domain.HistoryFilter]string{
	domain.HistoryAll:               "",
	domain.HistoryActiveFuture:      " AND r.reservation_status = 'ACTIVE' AND f.departure_time >= $2",
	domain.HistoryCompleted:         " AND r.reservation_status = 'ACTIVE' AND f.departure_time < $2",
	domain.HistoryCustomerCancelled: " AND r.reservation_status = 'CUSTOMER_CANCELED'",
	domain.HistorySystemCancelled:   " AND r.reservation_status = 'SYSTEM_CANCELED'",
}

func (r *PGReservationRepository) History(ctx context.Context, email string, filter domain.HistoryFilter, now time.Time) ([]domain.ReservationView, error) {
	cond, ok := historyConditions[filter]
	if !ok {
		return nil, domain.Validationf("unknown history filter %q", filter)
	}

	query := reservationViewSelect + ` WHERE r.email = $1` + cond + ` ORDER BY f.departure_time DESC`
	args := []any{email}
	if strings.Contains(cond, "$2") {
		args = append(args, now)
	}
	return r.views(ctx, now, query, args...)
}

func (r *PGReservationRepository) views(ctx context.Context, now time.Time, query string, args ...any) ([]domain.ReservationView, error) {
	rows, err := r.gw.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	views := make([]domain.ReservationView, 0)
	for rows.Next() {
		var v domain.ReservationView
		if err := rows.Scan(&v.Code, &v.Email, &v.FlightNumber, &v.Status, &v.TotalPaymentCents, &v.CreatedAt,
			&v.Origin, &v.Destination, &v.DepartureTime, &v.FlightStatus); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		untilDeparture := v.DepartureTime.Sub(now)
		v.IsUrgent = untilDeparture > 0 && untilDeparture < domain.FreeCancelNotice
		v.CancellationFee = domain.CancellationFee(v.TotalPaymentCents)
		views = append(views, v)
	}
	return views, rows.Err()
}

// Cancel moves an active reservation owned by email to CUSTOMER_CANCELED,
// applies the cancellation fee policy and deletes its seat claims.
func (r *PGReservationRepository) Cancel(ctx context.Context, email string, code int, now time.Time) (*domain.Reservation, error) {
	var res domain.Reservation

	err := r.gw.WithinTx(ctx, func(q Querier) error {
		var departure time.Time
		err := q.QueryRow(ctx, `
			SELECT r.reservation_code, r.email, r.flight_number, r.reservation_status, r.total_payment_cents, r.created_at,
			       f.departure_time
			FROM reservations r
			JOIN flight f ON f.flight_number = r.flight_number
			WHERE r.reservation_code = $1 AND r.email = $2
			FOR UPDATE OF r`, code, email).
			Scan(&res.Code, &res.Email, &res.FlightNumber, &res.Status, &res.TotalPaymentCents, &res.CreatedAt, &departure)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w %d", domain.ErrReservationNotFound, code)
			}
			return fmt.Errorf("failed to get reservation: %w", err)
		}
		if res.Status != domain.ReservationStatusActive {
			return domain.ErrReservationNotActive
		}

		res.TotalPaymentCents = domain.CancellationTotal(res.TotalPaymentCents, departure, now)
		res.Status = domain.ReservationStatusCustomerCanceled

		if _, err := q.Exec(ctx, `
			UPDATE reservations SET reservation_status = 'CUSTOMER_CANCELED', total_payment_cents = $2
			WHERE reservation_code = $1`, code, res.TotalPaymentCents); err != nil {
			return fmt.Errorf("failed to cancel reservation: %w", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM seats_in_reservation WHERE reservation_code = $1`, code); err != nil {
			return fmt.Errorf("failed to delete seat claims: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
