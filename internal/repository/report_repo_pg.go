package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ReportID int

const (
	ReportAverageOccupancy ReportID = iota + 1
	ReportRevenueByCombo
	ReportStaffHours
	ReportCancellationRate
	ReportAircraftMonthly
)

// ReportRows is a query result with the column names in select order.
type ReportRows struct {
	Columns []string
	Rows    [][]any
}

type ReportRepository interface {
	Run(ctx context.Context, id ReportID, now time.Time) (*ReportRows, error)
}

type PGReportRepository struct {
	gw *Gateway
}

func NewReportRepository(gw *Gateway) ReportRepository {
	return &PGReportRepository{gw: gw}
}

// Queries referencing $1 receive the current time there.
var reportQueries = map[ReportID]string{
	ReportAverageOccupancy: `
		SELECT 'Average occupancy (past flights)' AS metric,
		       ROUND(COALESCE(AVG(100.0 * COALESCE(booked.booked_seats, 0) / inv.total_seats), 0)::numeric, 2)::float8 AS value,
		       '%' AS unit
		FROM flight f
		JOIN (
			SELECT flight_number, COUNT(*) AS total_seats
			FROM seats_in_flights
			GROUP BY flight_number
		) inv ON inv.flight_number = f.flight_number
		LEFT JOIN (
			SELECT r.flight_number, COUNT(*) AS booked_seats
			FROM reservations r
			JOIN seats_in_reservation sr ON sr.reservation_code = r.reservation_code
			WHERE r.reservation_status = 'ACTIVE'
			GROUP BY r.flight_number
		) booked ON booked.flight_number = f.flight_number
		WHERE f.status = 'ACTIVE' AND f.departure_time < $1`,

	ReportRevenueByCombo: `
		SELECT a.size AS aircraft_size, a.manufacturer, c.class_type,
		       (COALESCE(SUM(sf.price_cents), 0) / 100.0)::float8 AS total_revenue
		FROM aircraft a
		JOIN class c ON c.aircraft_id = a.aircraft_id
		JOIN flight f ON f.aircraft_id = a.aircraft_id
		LEFT JOIN reservations r ON r.flight_number = f.flight_number AND r.reservation_status = 'ACTIVE'
		LEFT JOIN seats_in_reservation sr ON sr.reservation_code = r.reservation_code AND sr.class_type = c.class_type
		LEFT JOIN seats_in_flights sf ON sf.flight_number = sr.flight_number
		     AND sf.class_type = sr.class_type AND sf.seat_row = sr.seat_row AND sf.seat_column = sr.seat_column
		GROUP BY a.size, a.manufacturer, c.class_type
		ORDER BY a.size, a.manufacturer, c.class_type`,

	ReportStaffHours: `
		SELECT staff_id, first_name || ' ' || last_name AS name,
		       ROUND(SUM(CASE WHEN flight_duration < 360 THEN flight_duration ELSE 0 END) / 60.0, 2)::float8 AS short_hours,
		       ROUND(SUM(CASE WHEN flight_duration >= 360 THEN flight_duration ELSE 0 END) / 60.0, 2)::float8 AS long_hours,
		       ROUND(SUM(flight_duration) / 60.0, 2)::float8 AS total_hours
		FROM (
			SELECT p.id_number AS staff_id, p.first_name, p.last_name, fr.flight_duration
			FROM pilot p
			JOIN pilots_on_flights pf ON pf.id_number = p.id_number
			JOIN flight f ON f.flight_number = pf.flight_number
			JOIN flight_route fr ON fr.origin_airport = f.origin_airport AND fr.destination_airport = f.destination_airport
			WHERE f.status = 'ACTIVE' AND f.departure_time < $1
			UNION ALL
			SELECT fa.id_number, fa.first_name, fa.last_name, fr.flight_duration
			FROM flight_attendant fa
			JOIN flight_attendants_on_flights af ON af.id_number = fa.id_number
			JOIN flight f ON f.flight_number = af.flight_number
			JOIN flight_route fr ON fr.origin_airport = f.origin_airport AND fr.destination_airport = f.destination_airport
			WHERE f.status = 'ACTIVE' AND f.departure_time < $1
		) staff
		GROUP BY staff_id, first_name, last_name
		ORDER BY total_hours DESC, staff_id`,

	ReportCancellationRate: `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
		       COUNT(*) AS reservations,
		       ROUND(100.0 * COUNT(*) FILTER (WHERE reservation_status = 'CUSTOMER_CANCELED') / COUNT(*), 2)::float8 AS cancellation_rate
		FROM reservations
		WHERE created_at <= $1
		GROUP BY date_trunc('month', created_at)
		ORDER BY date_trunc('month', created_at)`,

	ReportAircraftMonthly: `
		WITH monthly AS (
			SELECT aircraft_id, date_trunc('month', departure_time) AS month,
			       COUNT(*) FILTER (WHERE status = 'ACTIVE') AS active_flights,
			       COUNT(*) FILTER (WHERE status = 'CANCELED') AS canceled_flights,
			       COUNT(DISTINCT departure_time::date) FILTER (WHERE status = 'ACTIVE') AS active_days
			FROM flight
			GROUP BY aircraft_id, date_trunc('month', departure_time)
		), top_route AS (
			SELECT DISTINCT ON (aircraft_id, date_trunc('month', departure_time))
			       aircraft_id, date_trunc('month', departure_time) AS month,
			       origin_airport || '-' || destination_airport AS route
			FROM flight
			WHERE status = 'ACTIVE'
			GROUP BY aircraft_id, date_trunc('month', departure_time), origin_airport, destination_airport
			ORDER BY aircraft_id, date_trunc('month', departure_time), COUNT(*) DESC, origin_airport, destination_airport
		)
		SELECT m.aircraft_id, to_char(m.month, 'YYYY-MM') AS month, m.active_flights, m.canceled_flights,
		       ROUND(m.active_days / 30.0 * 100, 2)::float8 AS utilization,
		       COALESCE(t.route, '') AS dominant_route
		FROM monthly m
		LEFT JOIN top_route t ON t.aircraft_id = m.aircraft_id AND t.month = m.month
		WHERE m.month <= $1
		ORDER BY m.aircraft_id, m.month`,
}

func (r *PGReportRepository) Run(ctx context.Context, id ReportID, now time.Time) (*ReportRows, error) {
	query, ok := reportQueries[id]
	if !ok {
		return nil, fmt.Errorf("unknown report %d", id)
	}

	var args []any
	if strings.Contains(query, "$1") {
		args = append(args, now)
	}

	rows, err := r.gw.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run report %d: %w", id, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &ReportRows{Columns: make([]string, len(fields)), Rows: make([][]any, 0)}
	for i, fd := range fields {
		result.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read report row: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

var _ ReportRepository = (*PGReportRepository)(nil)
