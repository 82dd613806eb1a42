package flights

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/airline/internal/availability"
	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/idgen"
	"github.com/Domenick1991/airline/internal/kafka"
	"github.com/Domenick1991/airline/internal/metrics"
	"github.com/Domenick1991/airline/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock структуры

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) GetRoute(ctx context.Context, origin, destination string) (*domain.Route, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockFlightRepository) ListOrigins(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlightRepository) ListDestinations(ctx context.Context, origin string) ([]string, error) {
	args := m.Called(ctx, origin)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlightRepository) GetByNumber(ctx context.Context, number int) (*domain.Flight, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Exists(ctx context.Context, number int) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, filter domain.FlightSearch, after time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, filter, after)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListOverview(ctx context.Context, now time.Time) ([]domain.FlightOverview, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.FlightOverview), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, in repository.NewFlight) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightRepository) Cancel(ctx context.Context, number int, departsAfter time.Time) (*domain.FlightCancellation, error) {
	args := m.Called(ctx, number, departsAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightCancellation), args.Error(1)
}

func (m *MockFlightRepository) SeatInventory(ctx context.Context, number int) ([]domain.SeatInFlight, error) {
	args := m.Called(ctx, number)
	return args.Get(0).([]domain.SeatInFlight), args.Error(1)
}

func (m *MockFlightRepository) TakenSeats(ctx context.Context, number int) ([]domain.SeatPosition, error) {
	args := m.Called(ctx, number)
	return args.Get(0).([]domain.SeatPosition), args.Error(1)
}

type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) AircraftCandidates(ctx context.Context) ([]domain.Aircraft, []availability.Candidate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Aircraft), args.Get(1).([]availability.Candidate), args.Error(2)
}

func (m *MockResourceRepository) CrewCandidates(ctx context.Context, role domain.CrewRole) ([]domain.CrewMember, []availability.Candidate, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.CrewMember), args.Get(1).([]availability.Candidate), args.Error(2)
}

type MockFleetRepository struct {
	mock.Mock
	repository.FleetRepository
}

func (m *MockFleetRepository) GetAircraft(ctx context.Context, id int64) (*domain.Aircraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Aircraft), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) FlightsKey(ctx context.Context, search domain.FlightSearch) (string, error) {
	args := m.Called(ctx, search)
	return args.String(0), args.Error(1)
}

func (m *MockCache) GetFlights(ctx context.Context, key string) ([]domain.Flight, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]domain.Flight), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetFlights(ctx context.Context, key string, flights []domain.Flight) error {
	args := m.Called(ctx, key, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mu     sync.Mutex
	events []kafka.Event
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, value.(kafka.Event))
	return nil
}

var testNow = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func ids(from, to int64) []int64 {
	out := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		out = append(out, id)
	}
	return out
}

func crewAt(role domain.CrewRole, idList []int64) ([]domain.CrewMember, []availability.Candidate) {
	members := make([]domain.CrewMember, 0, len(idList))
	candidates := make([]availability.Candidate, 0, len(idList))
	for _, id := range idList {
		members = append(members, domain.CrewMember{ID: id, Role: role, LongFlightCertified: true})
		candidates = append(candidates, availability.Candidate{ID: id, Certified: true})
	}
	return members, candidates
}

// newFixture wires a service whose route TLV-LHR (300 minutes) is served by
// aircraft 2001 (LARGE) and 3001 (SMALL), pilots 1..4 and attendants 11..18,
// all parked at the hub.
func newFixture(t *testing.T) (*FlightService, *MockFlightRepository, *MockResourceRepository, *MockFleetRepository) {
	t.Helper()

	flightRepo := &MockFlightRepository{}
	resources := &MockResourceRepository{}
	fleet := &MockFleetRepository{}

	route := &domain.Route{Origin: "TLV", Destination: "LHR", DurationMinutes: 300}
	flightRepo.On("GetRoute", mock.Anything, "TLV", "LHR").Return(route, nil).Maybe()

	aircraft := []domain.Aircraft{
		{ID: 2001, Size: domain.AircraftSizeLarge, Manufacturer: "BOEING"},
		{ID: 3001, Size: domain.AircraftSizeSmall, Manufacturer: "DASSAULT"},
	}
	resources.On("AircraftCandidates", mock.Anything).Return(aircraft, []availability.Candidate{
		{ID: 2001, Certified: true},
		{ID: 3001},
	}, nil).Maybe()

	pilots, pilotCandidates := crewAt(domain.CrewRolePilot, ids(1, 4))
	resources.On("CrewCandidates", mock.Anything, domain.CrewRolePilot).Return(pilots, pilotCandidates, nil).Maybe()
	attendants, attendantCandidates := crewAt(domain.CrewRoleAttendant, ids(11, 18))
	resources.On("CrewCandidates", mock.Anything, domain.CrewRoleAttendant).Return(attendants, attendantCandidates, nil).Maybe()

	fleet.On("GetAircraft", mock.Anything, int64(2001)).Return(&aircraft[0], nil).Maybe()
	fleet.On("GetAircraft", mock.Anything, int64(3001)).Return(&aircraft[1], nil).Maybe()
	fleet.On("GetAircraft", mock.Anything, int64(9999)).Return(nil, domain.ErrAircraftNotFound).Maybe()

	service := NewFlightService(flightRepo, resources, fleet, WithClock(fixedClock))
	return service, flightRepo, resources, fleet
}

func price(v int64) *int64 { return &v }

func number(v int) *int { return &v }

func validInput() CreateFlightInput {
	return CreateFlightInput{
		Number:        number(120),
		AircraftID:    2001,
		Origin:        "TLV",
		Destination:   "LHR",
		Departure:     testNow.Add(96 * time.Hour),
		PilotIDs:      ids(1, 3),
		AttendantIDs:  ids(11, 16),
		EconomyPrice:  price(45000),
		BusinessPrice: price(120000),
	}
}

func TestFlightService_Create_LargeWithFullCrew(t *testing.T) {
	m := metrics.New()
	producer := &MockProducer{}
	cache := &MockCache{}
	service, flightRepo, resources, fleet := newFixture(t)
	WithMetrics(m)(service)
	WithEvents(producer, "reservation_events", "notifications")(service)
	WithCache(cache)(service)

	// Настройка моков
	flightRepo.On("Create", mock.Anything, mock.MatchedBy(func(in repository.NewFlight) bool {
		return in.Flight.Number == 120 &&
			in.Flight.AircraftID == 2001 &&
			in.Flight.ArrivalTime.Equal(testNow.Add(96*time.Hour+300*time.Minute)) &&
			in.ClassPrices[domain.ClassEconomy] == 45000 &&
			in.ClassPrices[domain.ClassBusiness] == 120000 &&
			len(in.PilotIDs) == 3 && len(in.AttendantIDs) == 6
	})).Return(int64(180), nil).Once()
	cache.On("InvalidateFlights", mock.Anything).Return(nil).Once()

	// Выполнение
	result, err := service.Create(context.Background(), validInput())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, int64(180), result.SeatsCreated)
	assert.Equal(t, domain.FlightStatusActive, result.Flight.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FlightsCreated))
	require.Len(t, producer.events, 1)
	assert.Equal(t, kafka.EventFlightCreated, producer.events[0].Type)

	flightRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
	resources.AssertExpectations(t)
	fleet.AssertExpectations(t)
}

func TestFlightService_Create_SmallOmitsBusinessPrice(t *testing.T) {
	service, flightRepo, _, _ := newFixture(t)

	input := validInput()
	input.AircraftID = 3001
	input.PilotIDs = ids(1, 2)
	input.AttendantIDs = ids(11, 13)
	input.BusinessPrice = nil

	flightRepo.On("Create", mock.Anything, mock.MatchedBy(func(in repository.NewFlight) bool {
		_, hasBusiness := in.ClassPrices[domain.ClassBusiness]
		return !hasBusiness && in.ClassPrices[domain.ClassEconomy] == 45000
	})).Return(int64(40), nil).Once()

	result, err := service.Create(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, int64(40), result.SeatsCreated)
	flightRepo.AssertExpectations(t)
}

func TestFlightService_Create_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*CreateFlightInput)
		wantErr error
	}{
		{
			name:    "Number out of range",
			modify:  func(in *CreateFlightInput) { in.Number = number(10000) },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Negative number",
			modify:  func(in *CreateFlightInput) { in.Number = number(-1) },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Duplicate pilot",
			modify:  func(in *CreateFlightInput) { in.PilotIDs = []int64{1, 2, 1} },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Duplicate attendant",
			modify:  func(in *CreateFlightInput) { in.AttendantIDs = []int64{11, 12, 13, 14, 15, 11} },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Missing economy price",
			modify:  func(in *CreateFlightInput) { in.EconomyPrice = nil },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Negative economy price",
			modify:  func(in *CreateFlightInput) { in.EconomyPrice = price(-5) },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Missing business price for LARGE",
			modify:  func(in *CreateFlightInput) { in.BusinessPrice = nil },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Departure in the past",
			modify:  func(in *CreateFlightInput) { in.Departure = testNow.Add(-time.Hour) },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Unknown aircraft",
			modify:  func(in *CreateFlightInput) { in.AircraftID = 9999 },
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "LARGE with two pilots",
			modify:  func(in *CreateFlightInput) { in.PilotIDs = ids(1, 2) },
			wantErr: domain.ErrInsufficientCrew,
		},
		{
			name: "SMALL with two attendants",
			modify: func(in *CreateFlightInput) {
				in.AircraftID = 3001
				in.PilotIDs = ids(1, 2)
				in.AttendantIDs = ids(11, 12)
			},
			wantErr: domain.ErrInsufficientCrew,
		},
		{
			name:    "Pilot not available",
			modify:  func(in *CreateFlightInput) { in.PilotIDs = []int64{1, 2, 7} },
			wantErr: domain.ErrResourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, flightRepo, _, _ := newFixture(t)

			input := validInput()
			tt.modify(&input)

			_, err := service.Create(context.Background(), input)

			assert.ErrorIs(t, err, tt.wantErr)
			flightRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestFlightService_Create_UnknownRoute(t *testing.T) {
	service, flightRepo, _, _ := newFixture(t)
	flightRepo.On("GetRoute", mock.Anything, "TLV", "JFK").Return(nil, domain.ErrRouteNotFound)

	input := validInput()
	input.Destination = "JFK"

	_, err := service.Create(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFlightService_Create_LongFlightOnSmallAircraft(t *testing.T) {
	service, flightRepo, _, _ := newFixture(t)
	flightRepo.On("GetRoute", mock.Anything, "TLV", "JFK").
		Return(&domain.Route{Origin: "TLV", Destination: "JFK", DurationMinutes: 720}, nil)

	input := validInput()
	input.Destination = "JFK"
	input.AircraftID = 3001
	input.BusinessPrice = nil

	_, err := service.Create(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrLongFlightAircraft)
}

func TestFlightService_Create_GeneratesNumber(t *testing.T) {
	service, flightRepo, _, _ := newFixture(t)
	service.numbers = idgen.NewWithSource(func(n int) int { return 77 })

	flightRepo.On("Exists", mock.Anything, 77).Return(false, nil).Once()
	flightRepo.On("Create", mock.Anything, mock.MatchedBy(func(in repository.NewFlight) bool {
		return in.Flight.Number == 77
	})).Return(int64(10), nil).Once()

	input := validInput()
	input.Number = nil

	result, err := service.Create(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, 77, result.Flight.Number)
	flightRepo.AssertExpectations(t)
}

func TestFlightService_Cancel(t *testing.T) {
	producer := &MockProducer{}
	flightRepo := &MockFlightRepository{}
	service := NewFlightService(flightRepo, &MockResourceRepository{}, &MockFleetRepository{},
		WithClock(fixedClock), WithEvents(producer, "reservation_events", ""))

	flightRepo.On("Cancel", mock.Anything, 120, testNow.Add(72*time.Hour)).Return(&domain.FlightCancellation{
		FlightNumber:        120,
		ReservationsUpdated: 2,
		Affected: []domain.ReservationRef{
			{Code: 1234, Email: "a@example.com"},
			{Code: 5678, Email: "b@example.com"},
		},
	}, nil).Once()

	result, err := service.Cancel(context.Background(), 120)

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.ReservationsUpdated)
	require.Len(t, producer.events, 2)
	assert.Equal(t, kafka.EventFlightCanceled, producer.events[0].Type)
	assert.Equal(t, "b@example.com", producer.events[1].Email)
	assert.Equal(t, string(domain.ReservationStatusSystemCanceled), producer.events[1].Status)
	flightRepo.AssertExpectations(t)
}

func TestFlightService_Cancel_Refused(t *testing.T) {
	tests := []struct {
		reason  domain.CancelReason
		wantErr error
	}{
		{domain.CancelReasonTooSoon, domain.ErrCancelTooSoon},
		{domain.CancelReasonAlreadyCanceled, domain.ErrFlightAlreadyCanceled},
		{domain.CancelReasonNotFound, domain.ErrFlightNotFound},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			producer := &MockProducer{}
			flightRepo := &MockFlightRepository{}
			service := NewFlightService(flightRepo, &MockResourceRepository{}, &MockFleetRepository{},
				WithClock(fixedClock), WithEvents(producer, "reservation_events", ""))

			flightRepo.On("Cancel", mock.Anything, 120, mock.Anything).
				Return(&domain.FlightCancellation{FlightNumber: 120, Reason: tt.reason}, nil)

			result, err := service.Cancel(context.Background(), 120)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.reason, result.Reason)
			assert.Empty(t, producer.events)
		})
	}

	assert.True(t, IsCancelRefusal(domain.ErrCancelTooSoon))
	assert.False(t, IsCancelRefusal(domain.ErrFlightNotFound))
}

func TestFlightService_Search_CacheMiss(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(flightRepo, &MockResourceRepository{}, &MockFleetRepository{},
		WithClock(fixedClock), WithCache(cache))

	search := domain.FlightSearch{Origin: "TLV"}
	flights := []domain.Flight{{Number: 120, Origin: "TLV", Destination: "LHR"}}

	// Кэш пустой
	cache.On("FlightsKey", mock.Anything, search).Return("cache:flights:0:*|TLV|", nil).Once()
	cache.On("GetFlights", mock.Anything, "cache:flights:0:*|TLV|").Return(([]domain.Flight)(nil), false, nil).Once()
	flightRepo.On("Search", mock.Anything, search, testNow).Return(flights, nil).Once()
	cache.On("SetFlights", mock.Anything, "cache:flights:0:*|TLV|", flights).Return(nil).Once()

	result, err := service.Search(context.Background(), search)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	cache.AssertExpectations(t)
	flightRepo.AssertExpectations(t)
}

func TestFlightService_Search_CacheHit(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(flightRepo, &MockResourceRepository{}, &MockFleetRepository{}, WithCache(cache))

	search := domain.FlightSearch{Origin: "TLV", Destination: "LHR"}
	flights := []domain.Flight{{Number: 120}}
	cache.On("FlightsKey", mock.Anything, search).Return("cache:flights:0:*|TLV|LHR", nil).Once()
	cache.On("GetFlights", mock.Anything, "cache:flights:0:*|TLV|LHR").Return(flights, true, nil).Once()

	result, err := service.Search(context.Background(), search)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	flightRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_Search_CacheKeyFails(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(flightRepo, &MockResourceRepository{}, &MockFleetRepository{},
		WithClock(fixedClock), WithCache(cache))

	search := domain.FlightSearch{Origin: "TLV"}
	flights := []domain.Flight{{Number: 120}}
	cache.On("FlightsKey", mock.Anything, search).Return("", errors.New("redis down")).Once()
	flightRepo.On("Search", mock.Anything, search, testNow).Return(flights, nil).Once()

	result, err := service.Search(context.Background(), search)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	cache.AssertNotCalled(t, "GetFlights", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_SeatMap(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	service := NewFlightService(flightRepo, &MockResourceRepository{}, &MockFleetRepository{})

	a1 := domain.SeatPosition{Class: domain.ClassEconomy, Row: 1, Column: 1}
	a2 := domain.SeatPosition{Class: domain.ClassEconomy, Row: 1, Column: 2}

	flightRepo.On("GetByNumber", mock.Anything, 120).Return(&domain.Flight{Number: 120}, nil)
	flightRepo.On("SeatInventory", mock.Anything, 120).Return([]domain.SeatInFlight{
		{FlightNumber: 120, SeatPosition: a1, PriceCents: 100},
		{FlightNumber: 120, SeatPosition: a2, PriceCents: 100},
	}, nil)
	flightRepo.On("TakenSeats", mock.Anything, 120).Return([]domain.SeatPosition{a2}, nil)

	seats, err := service.SeatMap(context.Background(), 120)

	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.False(t, seats[0].Taken)
	assert.True(t, seats[1].Taken)
}

func TestFlightService_Overview(t *testing.T) {
	all := []domain.FlightOverview{
		{Flight: domain.Flight{Number: 1, Status: domain.FlightStatusActive}},
		{Flight: domain.Flight{Number: 2, Status: domain.FlightStatusActive}, IsFull: true},
		{Flight: domain.Flight{Number: 3, Status: domain.FlightStatusActive}, IsPast: true, IsFull: true},
		{Flight: domain.Flight{Number: 4, Status: domain.FlightStatusCanceled}},
	}

	tests := []struct {
		filter OverviewFilter
		want   []int
	}{
		{OverviewAll, []int{1, 2, 3, 4}},
		{OverviewUpcoming, []int{1, 2}},
		{OverviewFull, []int{2}},
		{OverviewPast, []int{3}},
		{OverviewCanceled, []int{4}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			flightRepo := &MockFlightRepository{}
			service := NewFlightService(flightRepo, &MockResourceRepository{}, &MockFleetRepository{}, WithClock(fixedClock))
			flightRepo.On("ListOverview", mock.Anything, testNow).Return(all, nil)

			result, err := service.Overview(context.Background(), tt.filter)

			require.NoError(t, err)
			got := make([]int, 0, len(result))
			for _, o := range result {
				got = append(got, o.Number)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	service := NewFlightService(&MockFlightRepository{}, &MockResourceRepository{}, &MockFleetRepository{})
	_, err := service.Overview(context.Background(), "soon")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFlightService_Plan(t *testing.T) {
	service, flightRepo, _, _ := newFixture(t)
	service.numbers = idgen.NewWithSource(func(n int) int { return 512 })
	flightRepo.On("Exists", mock.Anything, 512).Return(false, nil)

	plan, err := service.Plan(context.Background(), PlanInput{
		Origin:      "TLV",
		Destination: "LHR",
		Departure:   testNow.Add(24 * time.Hour),
		Size:        domain.AircraftSizeLarge,
	})

	require.NoError(t, err)
	assert.Equal(t, 512, plan.FlightNumber)
	assert.False(t, plan.LongFlight)
	assert.Equal(t, testNow.Add(24*time.Hour+300*time.Minute), plan.Arrival)
	require.Len(t, plan.Aircraft, 1)
	assert.Equal(t, int64(2001), plan.Aircraft[0].ID)
	assert.Len(t, plan.Pilots, 4)
	assert.Len(t, plan.Attendants, 8)
	assert.Equal(t, domain.CrewRequirement{Pilots: 3, Attendants: 6}, plan.Required)
}

func TestFlightService_Plan_BusyCrew(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	resources := &MockResourceRepository{}
	service := NewFlightService(flightRepo, resources, &MockFleetRepository{}, WithClock(fixedClock))

	departure := testNow.Add(24 * time.Hour)
	busy := []availability.Leg{{
		FlightNumber: 9,
		Origin:       "TLV",
		Destination:  "LHR",
		Window:       availability.NewWindow(departure.Add(-time.Hour), 240),
		Status:       domain.FlightStatusActive,
	}}

	flightRepo.On("GetRoute", mock.Anything, "TLV", "LHR").
		Return(&domain.Route{Origin: "TLV", Destination: "LHR", DurationMinutes: 300}, nil)
	resources.On("AircraftCandidates", mock.Anything).Return(
		[]domain.Aircraft{{ID: 3001, Size: domain.AircraftSizeSmall}},
		[]availability.Candidate{{ID: 3001}}, nil)
	pilots, pilotCandidates := crewAt(domain.CrewRolePilot, ids(1, 2))
	pilotCandidates[1].Legs = busy
	resources.On("CrewCandidates", mock.Anything, domain.CrewRolePilot).Return(pilots, pilotCandidates, nil)
	attendants, attendantCandidates := crewAt(domain.CrewRoleAttendant, ids(11, 13))
	resources.On("CrewCandidates", mock.Anything, domain.CrewRoleAttendant).Return(attendants, attendantCandidates, nil)

	_, err := service.Plan(context.Background(), PlanInput{
		Origin:      "TLV",
		Destination: "LHR",
		Departure:   departure,
		Size:        domain.AircraftSizeSmall,
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientCrew)
}

func TestFlightService_Plan_Validation(t *testing.T) {
	service, _, _, _ := newFixture(t)

	tests := []struct {
		name  string
		input PlanInput
	}{
		{"Same airports", PlanInput{Origin: "TLV", Destination: "TLV", Departure: testNow.Add(time.Hour), Size: domain.AircraftSizeSmall}},
		{"Past departure", PlanInput{Origin: "TLV", Destination: "LHR", Departure: testNow, Size: domain.AircraftSizeSmall}},
		{"Unknown size", PlanInput{Origin: "TLV", Destination: "LHR", Departure: testNow.Add(time.Hour), Size: "MEDIUM"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Plan(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFlightService_NextFlightNumber_Exhausted(t *testing.T) {
	flightRepo := &MockFlightRepository{}
	service := NewFlightService(flightRepo, &MockResourceRepository{}, &MockFleetRepository{},
		WithNumberGenerator(idgen.NewWithSource(func(n int) int { return 5 })))
	flightRepo.On("Exists", mock.Anything, 5).Return(true, nil)

	_, err := service.NextFlightNumber(context.Background())

	assert.ErrorIs(t, err, domain.ErrExhaustedRange)
	flightRepo.AssertNumberOfCalls(t, "Exists", idgen.FlightNumbers.Attempts)
}
