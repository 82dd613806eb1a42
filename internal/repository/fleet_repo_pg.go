package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/jackc/pgx/v5"
)

type FleetRepository interface {
	AircraftIDExists(ctx context.Context, id int64) (bool, error)
	CreateAircraft(ctx context.Context, aircraft domain.Aircraft, classes []domain.CabinClass) error
	GetAircraft(ctx context.Context, id int64) (*domain.Aircraft, error)
	ListClasses(ctx context.Context, aircraftID int64) ([]domain.CabinClass, error)
	StaffIDTaken(ctx context.Context, id int64) (bool, error)
	CreateCrewMember(ctx context.Context, m domain.CrewMember) error
}

type PGFleetRepository struct {
	gw *Gateway
}

func NewFleetRepository(gw *Gateway) FleetRepository {
	return &PGFleetRepository{gw: gw}
}

func (r *PGFleetRepository) AircraftIDExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.gw.DB().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM aircraft WHERE aircraft_id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check aircraft id: %w", err)
	}
	return exists, nil
}

// CreateAircraft stores the aircraft, its class grids and the seat layout
// they expand to.
func (r *PGFleetRepository) CreateAircraft(ctx context.Context, aircraft domain.Aircraft, classes []domain.CabinClass) error {
	return r.gw.WithinTx(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `
			INSERT INTO aircraft (aircraft_id, size, manufacturer, purchase_date)
			VALUES ($1, $2, $3, $4)`,
			aircraft.ID, aircraft.Size, aircraft.Manufacturer, aircraft.PurchaseDate); err != nil {
			if IsUniqueViolation(err, "") {
				return domain.Validationf("aircraft id %d already exists", aircraft.ID)
			}
			return fmt.Errorf("failed to insert aircraft: %w", err)
		}

		for _, c := range classes {
			if _, err := q.Exec(ctx, `
				INSERT INTO class (aircraft_id, class_type, number_of_rows, number_of_columns)
				VALUES ($1, $2, $3, $4)`,
				aircraft.ID, c.Type, c.Rows, c.Columns); err != nil {
				return fmt.Errorf("failed to insert %s class: %w", c.Type, err)
			}

			if _, err := q.Exec(ctx, `
				INSERT INTO seat (aircraft_id, class_type, seat_row, seat_column)
				SELECT $1, $2, r, c
				FROM generate_series(1, $3::int) AS r, generate_series(1, $4::int) AS c`,
				aircraft.ID, c.Type, c.Rows, c.Columns); err != nil {
				return fmt.Errorf("failed to insert %s seats: %w", c.Type, err)
			}
		}
		return nil
	})
}

func (r *PGFleetRepository) GetAircraft(ctx context.Context, id int64) (*domain.Aircraft, error) {
	var a domain.Aircraft
	err := r.gw.DB().QueryRow(ctx, `
		SELECT aircraft_id, size, manufacturer, purchase_date
		FROM aircraft WHERE aircraft_id = $1`, id).
		Scan(&a.ID, &a.Size, &a.Manufacturer, &a.PurchaseDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w %d", domain.ErrAircraftNotFound, id)
		}
		return nil, fmt.Errorf("failed to get aircraft: %w", err)
	}
	return &a, nil
}

func (r *PGFleetRepository) ListClasses(ctx context.Context, aircraftID int64) ([]domain.CabinClass, error) {
	rows, err := r.gw.DB().Query(ctx, `
		SELECT aircraft_id, class_type, number_of_rows, number_of_columns
		FROM class WHERE aircraft_id = $1
		ORDER BY class_type`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	classes := make([]domain.CabinClass, 0, 2)
	for rows.Next() {
		var c domain.CabinClass
		if err := rows.Scan(&c.AircraftID, &c.Type, &c.Rows, &c.Columns); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// StaffIDTaken checks the id against pilots, attendants and managers.
func (r *PGFleetRepository) StaffIDTaken(ctx context.Context, id int64) (bool, error) {
	var taken bool
	err := r.gw.DB().QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM pilot WHERE id_number = $1)
		    OR EXISTS (SELECT 1 FROM flight_attendant WHERE id_number = $1)
		    OR EXISTS (SELECT 1 FROM manager WHERE id_number = $1)`, id).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check staff id: %w", err)
	}
	return taken, nil
}

func (r *PGFleetRepository) CreateCrewMember(ctx context.Context, m domain.CrewMember) error {
	tables, ok := crewTablesByRole[m.Role]
	if !ok {
		return domain.Validationf("unknown crew role %q", m.Role)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id_number, first_name, last_name, city, street, house_number,
		                phone_number, employment_start_date, long_flight_certification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, pgx.Identifier{tables.staff}.Sanitize())

	_, err := r.gw.DB().Exec(ctx, query,
		m.ID, m.FirstName, m.LastName, m.City, m.Street, m.HouseNumber,
		m.PhoneNumber, m.EmploymentStart, m.LongFlightCertified)
	if err != nil {
		if IsUniqueViolation(err, "") {
			return domain.Validationf("id %d is already used by another staff member", m.ID)
		}
		return fmt.Errorf("failed to insert %s: %w", tables.staff, err)
	}
	return nil
}

var _ FleetRepository = (*PGFleetRepository)(nil)
