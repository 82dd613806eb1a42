package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageReader is the part of *kafka.Reader the consumer drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic as a member of a consumer group. Offsets are
// committed only after the handler accepted the message.
type Consumer struct {
	reader messageReader
	topic  string
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			StartOffset:       kafka.FirstOffset,
			MaxBytes:          1 << 20,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		topic: topic,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks until ctx is canceled (returning nil) or handler fails. A
// failed message is left uncommitted and is redelivered after a restart.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to fetch from %s: %w", c.topic, err)
		}

		if err := handler(ctx, msg); err != nil {
			return fmt.Errorf("failed to handle %s offset %d: %w", msg.Topic, msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit %s offset %d: %w", msg.Topic, msg.Offset, err)
		}
	}
}

// EventHandler adapts a typed handler to Consume. Messages that do not
// decode are logged and skipped.
func EventHandler(handle func(context.Context, Event) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.WarnContext(ctx, "skipping undecodable event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			return nil
		}
		return handle(ctx, event)
	}
}
