package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Domenick1991/airline/internal/kafka"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers notification emails. Delivery is a log line for now.
type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.Event) error {
	msg, ok := Compose(event)
	if !ok {
		return nil
	}
	s.log.InfoContext(ctx, "send email", "to", msg.To, "subject", msg.Subject, "event", event.Type)
	return nil
}

// Compose builds the email for an event. ok is false when the event has no
// recipient or no customer-facing meaning.
func Compose(e kafka.Event) (Message, bool) {
	if e.Email == "" {
		return Message{}, false
	}

	switch e.Type {
	case kafka.EventReservationCreated:
		return Message{
			To:      e.Email,
			Subject: fmt.Sprintf("Reservation %d confirmed", e.ReservationCode),
			Body: fmt.Sprintf("Flight %04d, seats %s. Total paid: %s.",
				e.FlightNumber, strings.Join(e.Seats, ", "), formatCents(e.TotalCents)),
		}, true
	case kafka.EventReservationCanceled:
		return Message{
			To:      e.Email,
			Subject: fmt.Sprintf("Reservation %d canceled", e.ReservationCode),
			Body:    fmt.Sprintf("Your reservation on flight %04d was canceled. Amount charged: %s.", e.FlightNumber, formatCents(e.TotalCents)),
		}, true
	case kafka.EventFlightCanceled:
		return Message{
			To:      e.Email,
			Subject: fmt.Sprintf("Flight %04d canceled", e.FlightNumber),
			Body:    fmt.Sprintf("Flight %04d was canceled by the airline. Reservation %d is fully refunded.", e.FlightNumber, e.ReservationCode),
		}, true
	default:
		return Message{}, false
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
