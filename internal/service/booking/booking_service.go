package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/kafka"
	"github.com/Domenick1991/airline/internal/metrics"
	"github.com/Domenick1991/airline/internal/repository"
)

type BookingUseCase interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	CancelAsGuest(ctx context.Context, email string, code int) (bool, error)
	CancelAsCustomer(ctx context.Context, email string, code int) (*domain.Reservation, error)
	Lookup(ctx context.Context, email string, code int) ([]domain.ReservationView, error)
	History(ctx context.Context, email string, filter domain.HistoryFilter) ([]domain.ReservationView, error)

	StartOrder(ctx context.Context, flightNumber int, seats []domain.SeatPosition) (*domain.DraftOrder, error)
	GetOrder(ctx context.Context, id string) (*domain.DraftOrder, error)
	AttachCustomer(ctx context.Context, id string, customer domain.Customer) (*domain.DraftOrder, error)
	Checkout(ctx context.Context, id string, card domain.PaymentCard) (*domain.Reservation, error)
}

type DraftStore interface {
	SaveDraft(ctx context.Context, order *domain.DraftOrder) error
	GetDraft(ctx context.Context, id string) (*domain.DraftOrder, error)
	PopDraft(ctx context.Context, id string) (*domain.DraftOrder, error)
}

type FlightCache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	reservations       repository.ReservationRepository
	flights            repository.FlightRepository
	drafts             DraftStore
	flightCache        FlightCache
	producer           Producer
	reservationsTopic  string
	notificationsTopic string
	draftTTL           time.Duration
	metrics            *metrics.Metrics
	now                func() time.Time
	newID              func() string
}

type CreateReservationInput struct {
	Email        string
	FlightNumber int
	Seats        []domain.SeatPosition
	// Customer is stored with the reservation when set.
	Customer *domain.Customer
}

type BookingServiceOption func(*BookingService)

func WithEvents(producer Producer, reservationsTopic, notificationsTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.reservationsTopic = reservationsTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithFlightCache(cache FlightCache) BookingServiceOption {
	return func(s *BookingService) {
		s.flightCache = cache
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithIDSource(newID func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newID = newID
	}
}

func NewBookingService(
	reservations repository.ReservationRepository,
	flights repository.FlightRepository,
	drafts DraftStore,
	draftTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		reservations: reservations,
		flights:      flights,
		drafts:       drafts,
		draftTTL:     draftTTL,
		now:          time.Now,
		newID:        newDraftID,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateReservation books seats on a flight in one transaction.
func (s *BookingService) CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validateSeats(input.Seats); err != nil {
		return nil, err
	}

	res, err := s.reservations.Create(ctx, repository.NewReservation{
		Email:        email,
		FlightNumber: input.FlightNumber,
		Seats:        input.Seats,
		Customer:     input.Customer,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrSeatTaken) && s.metrics != nil {
			s.metrics.SeatConflicts.Inc()
		}
		return nil, err
	}

	slog.InfoContext(ctx, "reservation created",
		"reservation_code", res.Code, "flight_number", res.FlightNumber, "seats", len(res.Seats))
	if s.metrics != nil {
		s.metrics.ReservationsCreated.Inc()
	}
	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventReservationCreated, res)
	return res, nil
}

func validateSeats(seats []domain.SeatPosition) error {
	if len(seats) == 0 {
		return domain.Validationf("at least one seat is required")
	}
	seen := make(map[domain.SeatPosition]bool, len(seats))
	for _, seat := range seats {
		if seat.Class != domain.ClassEconomy && seat.Class != domain.ClassBusiness {
			return domain.Validationf("unknown class %q", seat.Class)
		}
		if seat.Row < 1 || seat.Column < 1 {
			return domain.Validationf("seat %s is outside the cabin", seat)
		}
		if seen[seat] {
			return domain.Validationf("seat %s is requested twice", seat)
		}
		seen[seat] = true
	}
	return nil
}

// CancelAsGuest cancels by email and code. It reports false when there is
// no active reservation with that code owned by email.
func (s *BookingService) CancelAsGuest(ctx context.Context, email string, code int) (bool, error) {
	_, err := s.CancelAsCustomer(ctx, email, code)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrReservationNotActive):
		return false, nil
	default:
		return false, err
	}
}

// CancelAsCustomer cancels an active reservation. More than 36 hours before
// departure only the cancellation fee is kept.
func (s *BookingService) CancelAsCustomer(ctx context.Context, email string, code int) (*domain.Reservation, error) {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	res, err := s.reservations.Cancel(ctx, email, code, s.now())
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "reservation canceled", "reservation_code", res.Code, "charged_cents", res.TotalPaymentCents)
	if s.metrics != nil {
		s.metrics.ReservationsCanceled.Inc()
	}
	s.invalidateFlights(ctx)
	s.publish(ctx, kafka.EventReservationCanceled, res)
	return res, nil
}

func (s *BookingService) Lookup(ctx context.Context, email string, code int) ([]domain.ReservationView, error) {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.reservations.Lookup(ctx, email, code, s.now())
}

func (s *BookingService) History(ctx context.Context, email string, filter domain.HistoryFilter) ([]domain.ReservationView, error) {
	if filter == "" {
		filter = domain.HistoryAll
	}
	return s.reservations.History(ctx, email, filter, s.now())
}

func (s *BookingService) invalidateFlights(ctx context.Context) {
	if s.flightCache == nil {
		return
	}
	if err := s.flightCache.InvalidateFlights(ctx); err != nil {
		slog.WarnContext(ctx, "flight cache invalidation failed", "error", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, res *domain.Reservation) {
	if s.producer == nil || s.reservationsTopic == "" {
		return
	}

	seats := make([]string, 0, len(res.Seats))
	for _, seat := range res.Seats {
		seats = append(seats, seat.String())
	}
	event := kafka.Event{
		Type:            eventType,
		ReservationCode: res.Code,
		FlightNumber:    res.FlightNumber,
		Email:           res.Email,
		Seats:           seats,
		TotalCents:      res.TotalPaymentCents,
		Status:          string(res.Status),
		OccurredAt:      s.now(),
	}

	if err := s.producer.Publish(ctx, s.reservationsTopic, event.Key(), event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", eventType, "reservation_code", res.Code, "error", err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.Key(), event); err != nil {
			slog.WarnContext(ctx, "failed to publish notification", "type", eventType, "reservation_code", res.Code, "error", err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
