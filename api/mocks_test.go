package api

import (
	"context"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/service/accounts"
	"github.com/Domenick1991/airline/internal/service/booking"
	"github.com/Domenick1991/airline/internal/service/fleet"
	"github.com/Domenick1991/airline/internal/service/flights"
	"github.com/Domenick1991/airline/internal/service/reports"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Origins(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlightUseCase) Destinations(ctx context.Context, origin string) ([]string, error) {
	args := m.Called(ctx, origin)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, search domain.FlightSearch) ([]domain.Flight, error) {
	args := m.Called(ctx, search)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Get(ctx context.Context, number int) (*domain.Flight, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) SeatMap(ctx context.Context, number int) ([]domain.SeatMapSeat, error) {
	args := m.Called(ctx, number)
	return args.Get(0).([]domain.SeatMapSeat), args.Error(1)
}

func (m *MockFlightUseCase) Overview(ctx context.Context, filter flights.OverviewFilter) ([]domain.FlightOverview, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.FlightOverview), args.Error(1)
}

func (m *MockFlightUseCase) Plan(ctx context.Context, input flights.PlanInput) (*flights.Plan, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.Plan), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*flights.CreateFlightResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.CreateFlightResult), args.Error(1)
}

func (m *MockFlightUseCase) Cancel(ctx context.Context, number int) (*domain.FlightCancellation, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightCancellation), args.Error(1)
}

func (m *MockFlightUseCase) NextFlightNumber(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateReservation(ctx context.Context, input booking.CreateReservationInput) (*domain.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBookingUseCase) CancelAsGuest(ctx context.Context, email string, code int) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingUseCase) CancelAsCustomer(ctx context.Context, email string, code int) (*domain.Reservation, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBookingUseCase) Lookup(ctx context.Context, email string, code int) ([]domain.ReservationView, error) {
	args := m.Called(ctx, email, code)
	return args.Get(0).([]domain.ReservationView), args.Error(1)
}

func (m *MockBookingUseCase) History(ctx context.Context, email string, filter domain.HistoryFilter) ([]domain.ReservationView, error) {
	args := m.Called(ctx, email, filter)
	return args.Get(0).([]domain.ReservationView), args.Error(1)
}

func (m *MockBookingUseCase) StartOrder(ctx context.Context, flightNumber int, seats []domain.SeatPosition) (*domain.DraftOrder, error) {
	args := m.Called(ctx, flightNumber, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DraftOrder), args.Error(1)
}

func (m *MockBookingUseCase) GetOrder(ctx context.Context, id string) (*domain.DraftOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DraftOrder), args.Error(1)
}

func (m *MockBookingUseCase) AttachCustomer(ctx context.Context, id string, customer domain.Customer) (*domain.DraftOrder, error) {
	args := m.Called(ctx, id, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DraftOrder), args.Error(1)
}

func (m *MockBookingUseCase) Checkout(ctx context.Context, id string, card domain.PaymentCard) (*domain.Reservation, error) {
	args := m.Called(ctx, id, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

// MockAccountUseCase is a mock implementation of accounts.AccountUseCase
type MockAccountUseCase struct {
	mock.Mock
}

func (m *MockAccountUseCase) Signup(ctx context.Context, input accounts.SignupInput) (*domain.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAccountUseCase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAccountUseCase) ManagerLogin(ctx context.Context, id int64, password string) (*domain.Session, error) {
	args := m.Called(ctx, id, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAccountUseCase) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAccountUseCase) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAccountUseCase) Profile(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockAccountUseCase) SeedManager(ctx context.Context, manager domain.Manager, password string) error {
	args := m.Called(ctx, manager, password)
	return args.Error(0)
}

// MockFleetUseCase is a mock implementation of fleet.FleetUseCase
type MockFleetUseCase struct {
	mock.Mock
}

func (m *MockFleetUseCase) PurchaseAircraft(ctx context.Context, input fleet.PurchaseInput) (*fleet.AircraftDetails, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fleet.AircraftDetails), args.Error(1)
}

func (m *MockFleetUseCase) GetAircraft(ctx context.Context, id int64) (*fleet.AircraftDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fleet.AircraftDetails), args.Error(1)
}

func (m *MockFleetUseCase) HireCrew(ctx context.Context, member domain.CrewMember) (*domain.CrewMember, error) {
	args := m.Called(ctx, member)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CrewMember), args.Error(1)
}

// MockReportUseCase is a mock implementation of reports.ReportUseCase
type MockReportUseCase struct {
	mock.Mock
}

func (m *MockReportUseCase) Catalog() []reports.Entry {
	args := m.Called()
	return args.Get(0).([]reports.Entry)
}

func (m *MockReportUseCase) Build(ctx context.Context, id int) (*reports.Table, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.Table), args.Error(1)
}

func (m *MockReportUseCase) Snapshot(ctx context.Context) ([]reports.Table, error) {
	args := m.Called(ctx)
	return args.Get(0).([]reports.Table), args.Error(1)
}
