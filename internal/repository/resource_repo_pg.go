package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airline/internal/availability"
	"github.com/Domenick1991/airline/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ResourceRepository loads aircraft and crew together with the flights they
// are assigned to, in the shape the availability resolver works on.
type ResourceRepository interface {
	AircraftCandidates(ctx context.Context) ([]domain.Aircraft, []availability.Candidate, error)
	CrewCandidates(ctx context.Context, role domain.CrewRole) ([]domain.CrewMember, []availability.Candidate, error)
}

type PGResourceRepository struct {
	gw *Gateway
}

func NewResourceRepository(gw *Gateway) ResourceRepository {
	return &PGResourceRepository{gw: gw}
}

const legColumns = `f.flight_number, f.origin_airport, f.destination_airport, f.departure_time, r.flight_duration, f.status`

const aircraftCandidatesQuery = `
	SELECT a.aircraft_id, a.size, a.manufacturer, a.purchase_date, ` + legColumns + `
	FROM aircraft a
	LEFT JOIN flight f ON f.aircraft_id = a.aircraft_id AND f.status <> 'CANCELED'
	LEFT JOIN flight_route r ON r.origin_airport = f.origin_airport AND r.destination_airport = f.destination_airport
	ORDER BY a.aircraft_id`

// crewCandidatesQuery is shared by both crew roles; only the staff and
// assignment tables differ.
const crewCandidatesQuery = `
	SELECT c.id_number, c.first_name, c.last_name, c.long_flight_certification, ` + legColumns + `
	FROM %[1]s c
	LEFT JOIN %[2]s a ON a.id_number = c.id_number
	LEFT JOIN flight f ON f.flight_number = a.flight_number AND f.status <> 'CANCELED'
	LEFT JOIN flight_route r ON r.origin_airport = f.origin_airport AND r.destination_airport = f.destination_airport
	ORDER BY c.id_number`

type crewTables struct {
	staff      string
	assignment string
}

var crewTablesByRole = map[domain.CrewRole]crewTables{
	domain.CrewRolePilot:     {staff: "pilot", assignment: "pilots_on_flights"},
	domain.CrewRoleAttendant: {staff: "flight_attendant", assignment: "flight_attendants_on_flights"},
}

// nullableLeg receives the LEFT JOINed flight columns.
type nullableLeg struct {
	number      *int
	origin      *string
	destination *string
	departure   *time.Time
	duration    *int
	status      *string
}

func (l *nullableLeg) dest() []any {
	return []any{&l.number, &l.origin, &l.destination, &l.departure, &l.duration, &l.status}
}

func (l *nullableLeg) leg() (availability.Leg, bool) {
	if l.number == nil || l.departure == nil || l.duration == nil {
		return availability.Leg{}, false
	}
	return availability.Leg{
		FlightNumber: *l.number,
		Origin:       deref(l.origin),
		Destination:  deref(l.destination),
		Window:       availability.NewWindow(*l.departure, *l.duration),
		Status:       domain.FlightStatus(deref(l.status)),
	}, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// candidateBuilder groups rows ordered by resource id into candidates.
type candidateBuilder struct {
	candidates []availability.Candidate
}

func (b *candidateBuilder) add(id int64, certified bool, l *nullableLeg) (isNew bool) {
	n := len(b.candidates)
	if n == 0 || b.candidates[n-1].ID != id {
		b.candidates = append(b.candidates, availability.Candidate{ID: id, Certified: certified})
		n++
		isNew = true
	}
	if leg, ok := l.leg(); ok {
		b.candidates[n-1].Legs = append(b.candidates[n-1].Legs, leg)
	}
	return isNew
}

func (r *PGResourceRepository) AircraftCandidates(ctx context.Context) ([]domain.Aircraft, []availability.Candidate, error) {
	rows, err := r.gw.DB().Query(ctx, aircraftCandidatesQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query aircraft candidates: %w", err)
	}
	defer rows.Close()

	fleet := make([]domain.Aircraft, 0)
	var b candidateBuilder
	for rows.Next() {
		var a domain.Aircraft
		var l nullableLeg
		dest := append([]any{&a.ID, &a.Size, &a.Manufacturer, &a.PurchaseDate}, l.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan aircraft candidate: %w", err)
		}
		if b.add(a.ID, a.Size == domain.AircraftSizeLarge, &l) {
			fleet = append(fleet, a)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return fleet, b.candidates, nil
}

func (r *PGResourceRepository) CrewCandidates(ctx context.Context, role domain.CrewRole) ([]domain.CrewMember, []availability.Candidate, error) {
	tables, ok := crewTablesByRole[role]
	if !ok {
		return nil, nil, domain.Validationf("unknown crew role %q", role)
	}

	rows, err := r.gw.DB().Query(ctx, fmt.Sprintf(crewCandidatesQuery, pgx.Identifier{tables.staff}.Sanitize(), pgx.Identifier{tables.assignment}.Sanitize()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query %s candidates: %w", tables.staff, err)
	}
	defer rows.Close()

	crew := make([]domain.CrewMember, 0)
	var b candidateBuilder
	for rows.Next() {
		m := domain.CrewMember{Role: role}
		var l nullableLeg
		dest := append([]any{&m.ID, &m.FirstName, &m.LastName, &m.LongFlightCertified}, l.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan %s candidate: %w", tables.staff, err)
		}
		if b.add(m.ID, m.LongFlightCertified, &l) {
			crew = append(crew, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return crew, b.candidates, nil
}

var _ ResourceRepository = (*PGResourceRepository)(nil)
