package flights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Domenick1991/airline/internal/availability"
	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/idgen"
	"github.com/Domenick1991/airline/internal/kafka"
	"github.com/Domenick1991/airline/internal/metrics"
	"github.com/Domenick1991/airline/internal/repository"
)

type FlightUseCase interface {
	Origins(ctx context.Context) ([]string, error)
	Destinations(ctx context.Context, origin string) ([]string, error)
	Search(ctx context.Context, search domain.FlightSearch) ([]domain.Flight, error)
	Get(ctx context.Context, number int) (*domain.Flight, error)
	SeatMap(ctx context.Context, number int) ([]domain.SeatMapSeat, error)
	Overview(ctx context.Context, filter OverviewFilter) ([]domain.FlightOverview, error)
	Plan(ctx context.Context, input PlanInput) (*Plan, error)
	Create(ctx context.Context, input CreateFlightInput) (*CreateFlightResult, error)
	Cancel(ctx context.Context, number int) (*domain.FlightCancellation, error)
	NextFlightNumber(ctx context.Context) (int, error)
}

type FlightCache interface {
	FlightsKey(ctx context.Context, search domain.FlightSearch) (string, error)
	GetFlights(ctx context.Context, key string) ([]domain.Flight, bool, error)
	SetFlights(ctx context.Context, key string, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type OverviewFilter string

const (
	OverviewAll      OverviewFilter = "all"
	OverviewUpcoming OverviewFilter = "active_upcoming"
	OverviewFull     OverviewFilter = "full"
	OverviewPast     OverviewFilter = "past"
	OverviewCanceled OverviewFilter = "canceled"
)

type PlanInput struct {
	Origin      string
	Destination string
	Departure   time.Time
	Size        domain.AircraftSize
}

// Plan is what a manager chooses from when creating a flight.
type Plan struct {
	Route        domain.Route
	Departure    time.Time
	Arrival      time.Time
	LongFlight   bool
	Required     domain.CrewRequirement
	Aircraft     []domain.Aircraft
	Pilots       []domain.CrewMember
	Attendants   []domain.CrewMember
	FlightNumber int
}

type CreateFlightInput struct {
	// Number is generated when nil.
	Number        *int
	AircraftID    int64
	Origin        string
	Destination   string
	Departure     time.Time
	PilotIDs      []int64
	AttendantIDs  []int64
	EconomyPrice  *int64
	BusinessPrice *int64
}

type CreateFlightResult struct {
	Flight       domain.Flight
	SeatsCreated int64
}

type FlightService struct {
	flights   repository.FlightRepository
	resources repository.ResourceRepository
	fleet     repository.FleetRepository
	cache     FlightCache
	producer  Producer
	topic     string
	notify    string
	metrics   *metrics.Metrics
	numbers   *idgen.Generator
	now       func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithCache(cache FlightCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

// WithEvents publishes flight events on topic. Cancellation notices for
// affected customers also go to notificationsTopic when it is set.
func WithEvents(producer Producer, topic, notificationsTopic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.topic = topic
		s.notify = notificationsTopic
	}
}

func WithMetrics(m *metrics.Metrics) FlightServiceOption {
	return func(s *FlightService) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func WithNumberGenerator(g *idgen.Generator) FlightServiceOption {
	return func(s *FlightService) {
		s.numbers = g
	}
}

func NewFlightService(
	flights repository.FlightRepository,
	resources repository.ResourceRepository,
	fleet repository.FleetRepository,
	opts ...FlightServiceOption,
) *FlightService {
	s := &FlightService{
		flights:   flights,
		resources: resources,
		fleet:     fleet,
		numbers:   idgen.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) Origins(ctx context.Context) ([]string, error) {
	return s.flights.ListOrigins(ctx)
}

func (s *FlightService) Destinations(ctx context.Context, origin string) ([]string, error) {
	if origin == "" {
		return nil, domain.Validationf("origin is required")
	}
	return s.flights.ListDestinations(ctx, origin)
}

// Search returns upcoming active flights, served from the cache when possible.
func (s *FlightService) Search(ctx context.Context, search domain.FlightSearch) ([]domain.Flight, error) {
	// The key is fixed before the read so an invalidation in between is not overwritten.
	var key string
	if s.cache != nil {
		var err error
		if key, err = s.cache.FlightsKey(ctx, search); err != nil {
			slog.WarnContext(ctx, "flight cache key failed", "error", err)
		} else if cached, ok, err := s.cache.GetFlights(ctx, key); err != nil {
			slog.WarnContext(ctx, "flight cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	flights, err := s.flights.Search(ctx, search, s.now())
	if err != nil {
		return nil, err
	}
	if key != "" {
		if err := s.cache.SetFlights(ctx, key, flights); err != nil {
			slog.WarnContext(ctx, "flight cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) Get(ctx context.Context, number int) (*domain.Flight, error) {
	return s.flights.GetByNumber(ctx, number)
}

// SeatMap returns the priced inventory of a flight with claimed seats marked.
func (s *FlightService) SeatMap(ctx context.Context, number int) ([]domain.SeatMapSeat, error) {
	if _, err := s.flights.GetByNumber(ctx, number); err != nil {
		return nil, err
	}

	inventory, err := s.flights.SeatInventory(ctx, number)
	if err != nil {
		return nil, err
	}
	taken, err := s.flights.TakenSeats(ctx, number)
	if err != nil {
		return nil, err
	}

	claimed := make(map[domain.SeatPosition]bool, len(taken))
	for _, p := range taken {
		claimed[p] = true
	}

	seats := make([]domain.SeatMapSeat, 0, len(inventory))
	for _, seat := range inventory {
		seats = append(seats, domain.SeatMapSeat{SeatInFlight: seat, Taken: claimed[seat.SeatPosition]})
	}
	return seats, nil
}

func (s *FlightService) Overview(ctx context.Context, filter OverviewFilter) ([]domain.FlightOverview, error) {
	all, err := s.flights.ListOverview(ctx, s.now())
	if err != nil {
		return nil, err
	}

	keep := func(o domain.FlightOverview) bool { return true }
	switch filter {
	case "", OverviewAll:
	case OverviewUpcoming:
		keep = func(o domain.FlightOverview) bool { return o.Status == domain.FlightStatusActive && !o.IsPast }
	case OverviewFull:
		keep = func(o domain.FlightOverview) bool { return o.Status == domain.FlightStatusActive && !o.IsPast && o.IsFull }
	case OverviewPast:
		keep = func(o domain.FlightOverview) bool { return o.Status == domain.FlightStatusActive && o.IsPast }
	case OverviewCanceled:
		keep = func(o domain.FlightOverview) bool { return o.Status == domain.FlightStatusCanceled }
	default:
		return nil, domain.Validationf("unknown flight filter %q", filter)
	}

	out := make([]domain.FlightOverview, 0, len(all))
	for _, o := range all {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

// NextFlightNumber draws a flight number not used by any flight.
func (s *FlightService) NextFlightNumber(ctx context.Context) (int, error) {
	return s.numbers.Allocate(ctx, idgen.FlightNumbers, s.flights.Exists)
}

// Plan resolves what can operate a flight on the route at the given time.
func (s *FlightService) Plan(ctx context.Context, input PlanInput) (*Plan, error) {
	if input.Origin == "" || input.Destination == "" {
		return nil, domain.Validationf("origin and destination are required")
	}
	if input.Origin == input.Destination {
		return nil, domain.Validationf("origin and destination must differ")
	}
	if !input.Departure.After(s.now()) {
		return nil, domain.Validationf("departure must be in the future")
	}
	if input.Size != domain.AircraftSizeSmall && input.Size != domain.AircraftSizeLarge {
		return nil, domain.Validationf("unknown aircraft size %q", input.Size)
	}

	route, err := s.flights.GetRoute(ctx, input.Origin, input.Destination)
	if err != nil {
		return nil, err
	}
	if route.IsLong() && input.Size != domain.AircraftSizeLarge {
		return nil, domain.ErrLongFlightAircraft
	}

	res, err := s.resolve(ctx, *route, input.Departure)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Route:      *route,
		Departure:  input.Departure,
		Arrival:    input.Departure.Add(route.Duration()),
		LongFlight: route.IsLong(),
		Required:   domain.RequiredCrew(input.Size),
		Pilots:     res.pilots,
		Attendants: res.attendants,
	}
	for _, a := range res.aircraft {
		if a.Size == input.Size {
			plan.Aircraft = append(plan.Aircraft, a)
		}
	}

	if len(plan.Aircraft) == 0 {
		return nil, fmt.Errorf("%w: no %s aircraft at %s", domain.ErrResourceUnavailable, input.Size, input.Origin)
	}
	if len(plan.Pilots) < plan.Required.Pilots || len(plan.Attendants) < plan.Required.Attendants {
		return nil, fmt.Errorf("%w: %d pilots and %d attendants available, %d and %d required",
			domain.ErrInsufficientCrew, len(plan.Pilots), len(plan.Attendants), plan.Required.Pilots, plan.Required.Attendants)
	}

	plan.FlightNumber, err = s.NextFlightNumber(ctx)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

type resolved struct {
	aircraft   []domain.Aircraft
	pilots     []domain.CrewMember
	attendants []domain.CrewMember
}

// resolve runs the availability rules for every resource kind.
func (s *FlightService) resolve(ctx context.Context, route domain.Route, departure time.Time) (*resolved, error) {
	req := availability.Request{
		Window:     availability.NewWindow(departure, route.DurationMinutes),
		Origin:     route.Origin,
		LongFlight: route.IsLong(),
	}

	fleet, aircraftCandidates, err := s.resources.AircraftCandidates(ctx)
	if err != nil {
		return nil, err
	}
	pilots, pilotCandidates, err := s.resources.CrewCandidates(ctx, domain.CrewRolePilot)
	if err != nil {
		return nil, err
	}
	attendants, attendantCandidates, err := s.resources.CrewCandidates(ctx, domain.CrewRoleAttendant)
	if err != nil {
		return nil, err
	}

	return &resolved{
		aircraft:   pick(fleet, availability.Resolve(req, aircraftCandidates), func(a domain.Aircraft) int64 { return a.ID }),
		pilots:     pick(pilots, availability.Resolve(req, pilotCandidates), func(m domain.CrewMember) int64 { return m.ID }),
		attendants: pick(attendants, availability.Resolve(req, attendantCandidates), func(m domain.CrewMember) int64 { return m.ID }),
	}, nil
}

// pick keeps the items whose id is in ids, ordered by id.
func pick[T any](items []T, ids []int64, id func(T) int64) []T {
	free := make(map[int64]bool, len(ids))
	for _, v := range ids {
		free[v] = true
	}
	out := make([]T, 0, len(ids))
	for _, item := range items {
		if free[id(item)] {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*CreateFlightResult, error) {
	if err := validateCreate(input, s.now()); err != nil {
		return nil, err
	}

	route, err := s.flights.GetRoute(ctx, input.Origin, input.Destination)
	if err != nil {
		return nil, err
	}
	aircraft, err := s.fleet.GetAircraft(ctx, input.AircraftID)
	if err != nil {
		return nil, err
	}

	prices := map[domain.ClassType]int64{domain.ClassEconomy: *input.EconomyPrice}
	if aircraft.Size == domain.AircraftSizeLarge {
		if input.BusinessPrice == nil {
			return nil, domain.Validationf("business price is required for a LARGE aircraft")
		}
		prices[domain.ClassBusiness] = *input.BusinessPrice
	}

	if route.IsLong() && aircraft.Size != domain.AircraftSizeLarge {
		return nil, domain.ErrLongFlightAircraft
	}
	required := domain.RequiredCrew(aircraft.Size)
	if len(input.PilotIDs) < required.Pilots || len(input.AttendantIDs) < required.Attendants {
		return nil, fmt.Errorf("%w: %s aircraft needs %d pilots and %d attendants",
			domain.ErrInsufficientCrew, aircraft.Size, required.Pilots, required.Attendants)
	}

	res, err := s.resolve(ctx, *route, input.Departure)
	if err != nil {
		return nil, err
	}
	if err := checkAvailable(res, aircraft.ID, input.PilotIDs, input.AttendantIDs); err != nil {
		return nil, err
	}

	number := 0
	if input.Number != nil {
		number = *input.Number
	} else if number, err = s.NextFlightNumber(ctx); err != nil {
		return nil, err
	}

	flight := domain.Flight{
		Number:          number,
		AircraftID:      aircraft.ID,
		Origin:          route.Origin,
		Destination:     route.Destination,
		DepartureTime:   input.Departure,
		ArrivalTime:     input.Departure.Add(route.Duration()),
		DurationMinutes: route.DurationMinutes,
		Status:          domain.FlightStatusActive,
	}

	seats, err := s.flights.Create(ctx, repository.NewFlight{
		Flight:       flight,
		PilotIDs:     input.PilotIDs,
		AttendantIDs: input.AttendantIDs,
		ClassPrices:  prices,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "flight created", "flight_number", number, "aircraft_id", aircraft.ID, "seats", seats)
	if s.metrics != nil {
		s.metrics.FlightsCreated.Inc()
	}
	s.invalidate(ctx)
	s.publish(ctx, "", kafka.Event{
		Type:         kafka.EventFlightCreated,
		FlightNumber: number,
		Status:       string(domain.FlightStatusActive),
		Affected:     seats,
		OccurredAt:   s.now(),
	})

	return &CreateFlightResult{Flight: flight, SeatsCreated: seats}, nil
}

func validateCreate(input CreateFlightInput, now time.Time) error {
	if input.Number != nil && (*input.Number < 0 || *input.Number > domain.MaxFlightNumber) {
		return domain.Validationf("flight number must be between 0 and %d", domain.MaxFlightNumber)
	}
	if input.Origin == "" || input.Destination == "" {
		return domain.Validationf("origin and destination are required")
	}
	if !input.Departure.After(now) {
		return domain.Validationf("departure must be in the future")
	}
	if input.EconomyPrice == nil || *input.EconomyPrice < 0 {
		return domain.Validationf("economy price is required and must not be negative")
	}
	if input.BusinessPrice != nil && *input.BusinessPrice < 0 {
		return domain.Validationf("business price must not be negative")
	}
	if dup, ok := firstDuplicate(input.PilotIDs); ok {
		return domain.Validationf("pilot %d is listed twice", dup)
	}
	if dup, ok := firstDuplicate(input.AttendantIDs); ok {
		return domain.Validationf("attendant %d is listed twice", dup)
	}
	return nil
}

func firstDuplicate(ids []int64) (int64, bool) {
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return id, true
		}
		seen[id] = true
	}
	return 0, false
}

func checkAvailable(res *resolved, aircraftID int64, pilotIDs, attendantIDs []int64) error {
	aircraft := make(map[int64]bool)
	for _, a := range res.aircraft {
		aircraft[a.ID] = true
	}
	if !aircraft[aircraftID] {
		return fmt.Errorf("%w: aircraft %d", domain.ErrResourceUnavailable, aircraftID)
	}

	for _, group := range []struct {
		role  domain.CrewRole
		ids   []int64
		avail []domain.CrewMember
	}{
		{domain.CrewRolePilot, pilotIDs, res.pilots},
		{domain.CrewRoleAttendant, attendantIDs, res.attendants},
	} {
		free := make(map[int64]bool, len(group.avail))
		for _, m := range group.avail {
			free[m.ID] = true
		}
		for _, id := range group.ids {
			if !free[id] {
				return fmt.Errorf("%w: %s %d", domain.ErrResourceUnavailable, group.role, id)
			}
		}
	}
	return nil
}

// Cancel cancels a flight departing more than 72 hours from now and
// system-cancels its active reservations.
func (s *FlightService) Cancel(ctx context.Context, number int) (*domain.FlightCancellation, error) {
	now := s.now()
	result, err := s.flights.Cancel(ctx, number, now.Add(domain.FlightCancelNotice))
	if err != nil {
		return nil, err
	}
	if err := result.Reason.Err(); err != nil {
		return result, err
	}

	slog.InfoContext(ctx, "flight canceled", "flight_number", number, "reservations", result.ReservationsUpdated)
	if s.metrics != nil {
		s.metrics.FlightsCanceled.Inc()
	}
	s.invalidate(ctx)

	for _, ref := range result.Affected {
		s.publish(ctx, s.notify, kafka.Event{
			Type:            kafka.EventFlightCanceled,
			ReservationCode: ref.Code,
			FlightNumber:    number,
			Email:           ref.Email,
			Status:          string(domain.ReservationStatusSystemCanceled),
			OccurredAt:      now,
		})
	}
	return result, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		slog.WarnContext(ctx, "flight cache invalidation failed", "error", err)
	}
}

func (s *FlightService) publish(ctx context.Context, notificationsTopic string, event kafka.Event) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.Key(), event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", event.Type, "error", err)
		return
	}
	if notificationsTopic != "" {
		if err := s.producer.Publish(ctx, notificationsTopic, event.Key(), event); err != nil {
			slog.WarnContext(ctx, "failed to publish notification", "type", event.Type, "error", err)
		}
	}
}

// IsCancelRefusal reports an error returned by Cancel for a flight that
// exists but cannot be canceled.
func IsCancelRefusal(err error) bool {
	return errors.Is(err, domain.ErrFlightAlreadyCanceled) || errors.Is(err, domain.ErrCancelTooSoon)
}

var _ FlightUseCase = (*FlightService)(nil)
