package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/jackc/pgx/v5"
)

type FlightRepository interface {
	GetRoute(ctx context.Context, origin, destination string) (*domain.Route, error)
	ListOrigins(ctx context.Context) ([]string, error)
	ListDestinations(ctx context.Context, origin string) ([]string, error)
	GetByNumber(ctx context.Context, number int) (*domain.Flight, error)
	Exists(ctx context.Context, number int) (bool, error)
	Search(ctx context.Context, filter domain.FlightSearch, after time.Time) ([]domain.Flight, error)
	ListOverview(ctx context.Context, now time.Time) ([]domain.FlightOverview, error)
	Create(ctx context.Context, in NewFlight) (int64, error)
	Cancel(ctx context.Context, number int, departsAfter time.Time) (*domain.FlightCancellation, error)
	SeatInventory(ctx context.Context, number int) ([]domain.SeatInFlight, error)
	TakenSeats(ctx context.Context, number int) ([]domain.SeatPosition, error)
}

// NewFlight is everything inserted when a flight is created.
type NewFlight struct {
	Flight       domain.Flight
	PilotIDs     []int64
	AttendantIDs []int64
	// ClassPrices holds a price for each class that gets seats on the flight.
	ClassPrices map[domain.ClassType]int64
}

type PGFlightRepository struct {
	gw *Gateway
}

func NewFlightRepository(gw *Gateway) FlightRepository {
	return &PGFlightRepository{gw: gw}
}

const flightColumns = `f.flight_number, f.aircraft_id, f.origin_airport, f.destination_airport,
	f.departure_time, r.flight_duration, f.status`

const flightFrom = `FROM flight f
	JOIN flight_route r ON r.origin_airport = f.origin_airport AND r.destination_airport = f.destination_airport`

func scanFlight(row pgx.Row, extra ...any) (domain.Flight, error) {
	var f domain.Flight
	dest := append([]any{&f.Number, &f.AircraftID, &f.Origin, &f.Destination, &f.DepartureTime, &f.DurationMinutes, &f.Status}, extra...)
	if err := row.Scan(dest...); err != nil {
		return f, err
	}
	f.ArrivalTime = f.DepartureTime.Add(time.Duration(f.DurationMinutes) * time.Minute)
	return f, nil
}

func (r *PGFlightRepository) GetRoute(ctx context.Context, origin, destination string) (*domain.Route, error) {
	route := domain.Route{Origin: origin, Destination: destination}
	err := r.gw.DB().QueryRow(ctx, `SELECT flight_duration FROM flight_route WHERE origin_airport = $1 AND destination_airport = $2`,
		origin, destination).Scan(&route.DurationMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w %s-%s", domain.ErrRouteNotFound, origin, destination)
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

func (r *PGFlightRepository) ListOrigins(ctx context.Context) ([]string, error) {
	return r.airports(ctx, `SELECT DISTINCT origin_airport FROM flight_route ORDER BY origin_airport`)
}

func (r *PGFlightRepository) ListDestinations(ctx context.Context, origin string) ([]string, error) {
	return r.airports(ctx, `SELECT destination_airport FROM flight_route WHERE origin_airport = $1 ORDER BY destination_airport`, origin)
}

func (r *PGFlightRepository) airports(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.gw.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	airports := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		airports = append(airports, code)
	}
	return airports, rows.Err()
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, number int) (*domain.Flight, error) {
	row := r.gw.DB().QueryRow(ctx, `SELECT `+flightColumns+` `+flightFrom+` WHERE f.flight_number = $1`, number)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w %04d", domain.ErrFlightNotFound, number)
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Exists(ctx context.Context, number int) (bool, error) {
	var exists bool
	if err := r.gw.DB().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flight WHERE flight_number = $1)`, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check flight number: %w", err)
	}
	return exists, nil
}

func (r *PGFlightRepository) Search(ctx context.Context, filter domain.FlightSearch, after time.Time) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` ` + flightFrom + `
		WHERE f.status = 'ACTIVE' AND f.departure_time > $1`
	args := []any{after}

	if filter.Date != nil {
		args = append(args, filter.Date.Format(time.DateOnly))
		query += fmt.Sprintf(" AND f.departure_time::date = $%d::date", len(args))
	}
	if filter.Origin != "" {
		args = append(args, filter.Origin)
		query += fmt.Sprintf(" AND f.origin_airport = $%d", len(args))
	}
	if filter.Destination != "" {
		args = append(args, filter.Destination)
		query += fmt.Sprintf(" AND f.destination_airport = $%d", len(args))
	}
	query += " ORDER BY f.departure_time"

	rows, err := r.gw.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) ListOverview(ctx context.Context, now time.Time) ([]domain.FlightOverview, error) {
	rows, err := r.gw.DB().Query(ctx, `
		SELECT `+flightColumns+`,
		       COALESCE(st.total_seats, 0), COALESCE(tk.taken_seats, 0)
		`+flightFrom+`
		LEFT JOIN (
			SELECT flight_number, COUNT(*) AS total_seats
			FROM seats_in_flights
			GROUP BY flight_number
		) st ON st.flight_number = f.flight_number
		LEFT JOIN (
			SELECT flight_number, COUNT(*) AS taken_seats
			FROM seats_in_reservation
			WHERE active
			GROUP BY flight_number
		) tk ON tk.flight_number = f.flight_number
		ORDER BY f.departure_time`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flight overview: %w", err)
	}
	defer rows.Close()

	overview := make([]domain.FlightOverview, 0)
	for rows.Next() {
		var o domain.FlightOverview
		f, err := scanFlight(rows, &o.TotalSeats, &o.TakenSeats)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight overview: %w", err)
		}
		o.Flight = f
		o.HoursToDeparture = int(f.DepartureTime.Sub(now).Hours())
		o.IsPast = f.DepartureTime.Before(now)
		o.IsFull = o.TotalSeats > 0 && o.TotalSeats == o.TakenSeats
		overview = append(overview, o)
	}
	return overview, rows.Err()
}

// Create inserts the flight, its crew and its priced seat inventory in one
// transaction and returns the number of seats put on sale.
func (r *PGFlightRepository) Create(ctx context.Context, in NewFlight) (int64, error) {
	f := in.Flight
	var seatsCreated int64

	err := r.gw.WithinTx(ctx, func(q Querier) error {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flight WHERE flight_number = $1)`, f.Number).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check flight number: %w", err)
		}
		if exists {
			return domain.Validationf("flight number %04d already exists", f.Number)
		}

		if _, err := q.Exec(ctx, `
			INSERT INTO flight (flight_number, aircraft_id, origin_airport, destination_airport, departure_time, status)
			VALUES ($1, $2, $3, $4, $5, 'ACTIVE')`,
			f.Number, f.AircraftID, f.Origin, f.Destination, f.DepartureTime); err != nil {
			if IsUniqueViolation(err, flightPKey) {
				return domain.Validationf("flight number %04d already exists", f.Number)
			}
			return fmt.Errorf("failed to insert flight: %w", err)
		}

		for _, id := range in.PilotIDs {
			if _, err := q.Exec(ctx, `INSERT INTO pilots_on_flights (id_number, flight_number) VALUES ($1, $2)`, id, f.Number); err != nil {
				return fmt.Errorf("failed to assign pilot %d: %w", id, err)
			}
		}
		for _, id := range in.AttendantIDs {
			if _, err := q.Exec(ctx, `INSERT INTO flight_attendants_on_flights (id_number, flight_number) VALUES ($1, $2)`, id, f.Number); err != nil {
				return fmt.Errorf("failed to assign attendant %d: %w", id, err)
			}
		}

		var layout int64
		if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM seat WHERE aircraft_id = $1`, f.AircraftID).Scan(&layout); err != nil {
			return fmt.Errorf("failed to count aircraft seats: %w", err)
		}
		if layout == 0 {
			return fmt.Errorf("%w: aircraft %d has no seats", domain.ErrEmptyInventory, f.AircraftID)
		}

		classes := make([]string, 0, len(in.ClassPrices))
		prices := make([]int64, 0, len(in.ClassPrices))
		for class, price := range in.ClassPrices {
			classes = append(classes, string(class))
			prices = append(prices, price)
		}

		tag, err := q.Exec(ctx, `
			INSERT INTO seats_in_flights (flight_number, aircraft_id, class_type, seat_row, seat_column, price_cents)
			SELECT $1, s.aircraft_id, s.class_type, s.seat_row, s.seat_column, p.price_cents
			FROM seat s
			JOIN unnest($3::text[], $4::bigint[]) AS p(class_type, price_cents) ON p.class_type = s.class_type
			WHERE s.aircraft_id = $2`,
			f.Number, f.AircraftID, classes, prices)
		if err != nil {
			return fmt.Errorf("failed to create seat inventory: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: no aircraft seat matches a priced class", domain.ErrEmptyInventory)
		}
		seatsCreated = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return seatsCreated, nil
}

// Cancel cancels the flight when it departs after departsAfter and moves its
// active reservations to SYSTEM_CANCELED. When nothing changes the reason says why.
func (r *PGFlightRepository) Cancel(ctx context.Context, number int, departsAfter time.Time) (*domain.FlightCancellation, error) {
	result := &domain.FlightCancellation{FlightNumber: number}

	err := r.gw.WithinTx(ctx, func(q Querier) error {
		tag, err := q.Exec(ctx, `
			UPDATE flight SET status = 'CANCELED'
			WHERE flight_number = $1 AND status = 'ACTIVE' AND departure_time > $2`,
			number, departsAfter)
		if err != nil {
			return fmt.Errorf("failed to cancel flight: %w", err)
		}

		if tag.RowsAffected() != 1 {
			var status domain.FlightStatus
			err := q.QueryRow(ctx, `SELECT status FROM flight WHERE flight_number = $1`, number).Scan(&status)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				result.Reason = domain.CancelReasonNotFound
			case err != nil:
				return fmt.Errorf("failed to read flight status: %w", err)
			case status != domain.FlightStatusActive:
				result.Reason = domain.CancelReasonAlreadyCanceled
			default:
				result.Reason = domain.CancelReasonTooSoon
			}
			return nil
		}

		rows, err := q.Query(ctx, `
			UPDATE reservations SET reservation_status = 'SYSTEM_CANCELED', total_payment_cents = 0
			WHERE flight_number = $1 AND reservation_status = 'ACTIVE'
			RETURNING reservation_code, email`, number)
		if err != nil {
			return fmt.Errorf("failed to cancel reservations: %w", err)
		}
		refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReservationRef, error) {
			var ref domain.ReservationRef
			err := row.Scan(&ref.Code, &ref.Email)
			return ref, err
		})
		if err != nil {
			return fmt.Errorf("failed to read canceled reservations: %w", err)
		}
		result.Affected = refs
		result.ReservationsUpdated = int64(len(refs))

		if _, err := q.Exec(ctx, `UPDATE seats_in_reservation SET active = FALSE WHERE flight_number = $1 AND active`, number); err != nil {
			return fmt.Errorf("failed to release seat claims: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PGFlightRepository) SeatInventory(ctx context.Context, number int) ([]domain.SeatInFlight, error) {
	rows, err := r.gw.DB().Query(ctx, `
		SELECT flight_number, aircraft_id, class_type, seat_row, seat_column, price_cents
		FROM seats_in_flights
		WHERE flight_number = $1
		ORDER BY class_type DESC, seat_row, seat_column`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to query seat inventory: %w", err)
	}
	defer rows.Close()

	seats := make([]domain.SeatInFlight, 0)
	for rows.Next() {
		var s domain.SeatInFlight
		if err := rows.Scan(&s.FlightNumber, &s.AircraftID, &s.Class, &s.Row, &s.Column, &s.PriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r *PGFlightRepository) TakenSeats(ctx context.Context, number int) ([]domain.SeatPosition, error) {
	rows, err := r.gw.DB().Query(ctx, `
		SELECT class_type, seat_row, seat_column
		FROM seats_in_reservation
		WHERE flight_number = $1 AND active`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to query taken seats: %w", err)
	}
	defer rows.Close()

	taken := make([]domain.SeatPosition, 0)
	for rows.Next() {
		var p domain.SeatPosition
		if err := rows.Scan(&p.Class, &p.Row, &p.Column); err != nil {
			return nil, fmt.Errorf("failed to scan taken seat: %w", err)
		}
		taken = append(taken, p)
	}
	return taken, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
