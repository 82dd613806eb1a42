package fleet

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/idgen"
	"github.com/Domenick1991/airline/internal/repository"
)

type FleetUseCase interface {
	PurchaseAircraft(ctx context.Context, input PurchaseInput) (*AircraftDetails, error)
	GetAircraft(ctx context.Context, id int64) (*AircraftDetails, error)
	HireCrew(ctx context.Context, member domain.CrewMember) (*domain.CrewMember, error)
}

// Grid is the rows and columns of one cabin class.
type Grid struct {
	Rows    int
	Columns int
}

type PurchaseInput struct {
	Manufacturer string
	Size         string
	Economy      Grid
	// Business is required for LARGE aircraft and ignored for SMALL ones.
	Business *Grid
	// PurchaseDate defaults to today.
	PurchaseDate time.Time
}

type AircraftDetails struct {
	domain.Aircraft
	Classes    []domain.CabinClass
	TotalSeats int
}

type FleetService struct {
	fleet repository.FleetRepository
	ids   *idgen.Generator
	now   func() time.Time
}

type FleetServiceOption func(*FleetService)

func WithIDGenerator(g *idgen.Generator) FleetServiceOption {
	return func(s *FleetService) {
		s.ids = g
	}
}

func WithClock(now func() time.Time) FleetServiceOption {
	return func(s *FleetService) {
		s.now = now
	}
}

func NewFleetService(fleet repository.FleetRepository, opts ...FleetServiceOption) *FleetService {
	s := &FleetService{
		fleet: fleet,
		ids:   idgen.New(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FleetService) PurchaseAircraft(ctx context.Context, input PurchaseInput) (*AircraftDetails, error) {
	manufacturer := strings.ToUpper(strings.TrimSpace(input.Manufacturer))
	if !slices.Contains(domain.Manufacturers, manufacturer) {
		return nil, domain.Validationf("manufacturer must be one of %s", strings.Join(domain.Manufacturers, ", "))
	}
	size, err := domain.ParseAircraftSize(input.Size)
	if err != nil {
		return nil, err
	}
	if input.Economy.Rows < 1 || input.Economy.Columns < 1 {
		return nil, domain.Validationf("economy rows and columns must be at least 1")
	}

	grids := []domain.CabinClass{{Type: domain.ClassEconomy, Rows: input.Economy.Rows, Columns: input.Economy.Columns}}
	if size == domain.AircraftSizeLarge {
		if input.Business == nil || input.Business.Rows < 1 || input.Business.Columns < 1 {
			return nil, domain.Validationf("business rows and columns are required for a LARGE aircraft")
		}
		grids = append(grids, domain.CabinClass{Type: domain.ClassBusiness, Rows: input.Business.Rows, Columns: input.Business.Columns})
	}

	id, err := s.ids.Allocate(ctx, idgen.AircraftIDs, func(ctx context.Context, n int) (bool, error) {
		return s.fleet.AircraftIDExists(ctx, int64(n))
	})
	if err != nil {
		return nil, err
	}

	purchased := input.PurchaseDate
	if purchased.IsZero() {
		purchased = s.now()
	}
	aircraft := domain.Aircraft{
		ID:           int64(id),
		Size:         size,
		Manufacturer: manufacturer,
		PurchaseDate: purchased.Truncate(24 * time.Hour),
	}

	details := &AircraftDetails{Aircraft: aircraft}
	for _, g := range grids {
		g.AircraftID = aircraft.ID
		details.Classes = append(details.Classes, g)
		details.TotalSeats += g.Rows * g.Columns
	}

	if err := s.fleet.CreateAircraft(ctx, aircraft, details.Classes); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "aircraft purchased", "aircraft_id", aircraft.ID, "size", size, "seats", details.TotalSeats)
	return details, nil
}

func (s *FleetService) GetAircraft(ctx context.Context, id int64) (*AircraftDetails, error) {
	aircraft, err := s.fleet.GetAircraft(ctx, id)
	if err != nil {
		return nil, err
	}
	classes, err := s.fleet.ListClasses(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &AircraftDetails{Aircraft: *aircraft, Classes: classes}
	for _, c := range classes {
		details.TotalSeats += c.Rows * c.Columns
	}
	return details, nil
}

// HireCrew adds a pilot or flight attendant. The id must not belong to any
// other staff member.
func (s *FleetService) HireCrew(ctx context.Context, member domain.CrewMember) (*domain.CrewMember, error) {
	if member.Role != domain.CrewRolePilot && member.Role != domain.CrewRoleAttendant {
		return nil, domain.Validationf("role must be %s or %s", domain.CrewRolePilot, domain.CrewRoleAttendant)
	}
	if member.ID <= 0 {
		return nil, domain.Validationf("id number must be positive")
	}
	member.FirstName = strings.TrimSpace(member.FirstName)
	member.LastName = strings.TrimSpace(member.LastName)
	if member.FirstName == "" || member.LastName == "" {
		return nil, domain.Validationf("first and last name are required")
	}
	if member.HouseNumber < 0 {
		return nil, domain.Validationf("house number must not be negative")
	}
	if member.EmploymentStart.IsZero() {
		member.EmploymentStart = s.now().Truncate(24 * time.Hour)
	}

	taken, err := s.fleet.StaffIDTaken(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Validationf("id %d is already used by another staff member", member.ID)
	}

	if err := s.fleet.CreateCrewMember(ctx, member); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "crew member hired", "id", member.ID, "role", member.Role)
	return &member, nil
}

var _ FleetUseCase = (*FleetService)(nil)
