package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventReservationCreated  = "reservation_created"
	EventReservationCanceled = "reservation_canceled"
	EventFlightCreated       = "flight_created"
	EventFlightCanceled      = "flight_canceled"
)

// Event is published on the reservations and notifications topics.
type Event struct {
	Type            string    `json:"type"`
	ReservationCode int       `json:"reservation_code,omitempty"`
	FlightNumber    int       `json:"flight_number"`
	Email           string    `json:"email,omitempty"`
	Seats           []string  `json:"seats,omitempty"`
	TotalCents      int64     `json:"total_cents"`
	Status          string    `json:"status"`
	Affected        int64     `json:"affected,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Key orders events of one reservation, or of one flight when there is no
// reservation, on the same partition.
func (e Event) Key() string {
	if e.ReservationCode != 0 {
		return fmt.Sprintf("reservation-%d", e.ReservationCode)
	}
	return fmt.Sprintf("flight-%04d", e.FlightNumber)
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	slog.DebugContext(ctx, "published event", "topic", topic, "key", key)
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(); err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	return nil
}
