package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/google/uuid"
)

func newDraftID() string {
	return uuid.NewString()
}

// StartOrder prices the selected seats and keeps the selection as a draft
// order until it expires.
func (s *BookingService) StartOrder(ctx context.Context, flightNumber int, seats []domain.SeatPosition) (*domain.DraftOrder, error) {
	if err := validateSeats(seats); err != nil {
		return nil, err
	}

	now := s.now()
	flight, err := s.flights.GetByNumber(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	if flight.Status != domain.FlightStatusActive {
		return nil, domain.ErrFlightNotActive
	}
	if !flight.DepartureTime.After(now) {
		return nil, domain.Policyf("flight %04d has already departed", flightNumber)
	}

	inventory, err := s.flights.SeatInventory(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	taken, err := s.flights.TakenSeats(ctx, flightNumber)
	if err != nil {
		return nil, err
	}

	priced := make(map[domain.SeatPosition]domain.SeatInFlight, len(inventory))
	for _, seat := range inventory {
		priced[seat.SeatPosition] = seat
	}
	claimed := make(map[domain.SeatPosition]bool, len(taken))
	for _, p := range taken {
		claimed[p] = true
	}

	order := &domain.DraftOrder{
		ID:           s.newID(),
		FlightNumber: flightNumber,
		Seats:        make([]domain.SeatInFlight, 0, len(seats)),
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.draftTTL),
	}
	for _, p := range seats {
		seat, ok := priced[p]
		if !ok {
			return nil, domain.Validationf("seat %s is not sold on flight %04d", p, flightNumber)
		}
		if claimed[p] {
			return nil, fmt.Errorf("%w: %s", domain.ErrSeatTaken, p)
		}
		order.Seats = append(order.Seats, seat)
		order.TotalCents += seat.PriceCents
	}

	if err := s.drafts.SaveDraft(ctx, order); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "draft order started", "order_id", order.ID, "flight_number", flightNumber, "total_cents", order.TotalCents)
	return order, nil
}

func (s *BookingService) GetOrder(ctx context.Context, id string) (*domain.DraftOrder, error) {
	if id == "" {
		return nil, domain.ErrDraftOrderNotFound
	}
	return s.drafts.GetDraft(ctx, id)
}

// AttachCustomer stores the passenger details on a draft order.
func (s *BookingService) AttachCustomer(ctx context.Context, id string, customer domain.Customer) (*domain.DraftOrder, error) {
	normalized, err := validateCustomer(customer)
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Customer = normalized

	if err := s.drafts.SaveDraft(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func validateCustomer(c domain.Customer) (*domain.Customer, error) {
	email, err := domain.NormalizeEmail(c.Email)
	if err != nil {
		return nil, err
	}
	out := &domain.Customer{
		Email:     email,
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
	}
	if out.FirstName == "" || out.LastName == "" {
		return nil, domain.Validationf("first and last name are required")
	}
	for _, phone := range c.Phones {
		if phone = strings.TrimSpace(phone); phone != "" {
			out.Phones = append(out.Phones, phone)
		}
	}
	if len(out.Phones) == 0 {
		return nil, domain.Validationf("at least one phone number is required")
	}
	return out, nil
}

// Checkout validates the card, removes the draft and commits the reservation.
// The draft is restored when the reservation cannot be stored.
func (s *BookingService) Checkout(ctx context.Context, id string, card domain.PaymentCard) (*domain.Reservation, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Customer == nil {
		return nil, domain.Validationf("passenger details are missing")
	}
	if err := ValidateCard(card, s.now()); err != nil {
		return nil, err
	}

	order, err = s.drafts.PopDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.CreateReservation(ctx, CreateReservationInput{
		Email:        order.Customer.Email,
		FlightNumber: order.FlightNumber,
		Seats:        order.Positions(),
		Customer:     order.Customer,
	})
	if err != nil {
		if order.ExpiresAt.After(s.now()) {
			if saveErr := s.drafts.SaveDraft(ctx, order); saveErr != nil {
				slog.WarnContext(ctx, "failed to restore draft order", "order_id", id, "error", saveErr)
			}
		}
		return nil, err
	}
	return res, nil
}

// ValidateCard checks the card fields: holder name present, a number of 12
// to 19 digits, a CVV of 3 or 4 digits and an MM/YY expiry not before the
// current month.
func ValidateCard(card domain.PaymentCard, now time.Time) error {
	if strings.TrimSpace(card.HolderName) == "" {
		return domain.Validationf("card holder name is required")
	}

	number := strings.ReplaceAll(card.Number, " ", "")
	if len(number) < 12 || len(number) > 19 || !digitsOnly(number) {
		return domain.Validationf("card number must have 12 to 19 digits")
	}
	if len(card.CVV) < 3 || len(card.CVV) > 4 || !digitsOnly(card.CVV) {
		return domain.Validationf("cvv must have 3 or 4 digits")
	}

	month, year, ok := parseExpiry(card.Expiry)
	if !ok {
		return domain.Validationf("expiry must be MM/YY")
	}
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return domain.Validationf("card has expired")
	}
	return nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func parseExpiry(s string) (month, year int, ok bool) {
	mm, yy, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found || len(mm) != 2 || len(yy) != 2 || !digitsOnly(mm) || !digitsOnly(yy) {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(mm)
	year, _ = strconv.Atoi(yy)
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return month, 2000 + year, true
}
