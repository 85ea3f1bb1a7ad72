package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// ChangeHandler processes one decoded order change.
type ChangeHandler func(ctx context.Context, change OrderChange) error

// Consumer reads the whole push topic in a durable consumer group. Unlike a
// Feed subscription it is not scoped to one order; background services use it
// to observe every change exactly once per group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader}
}

func (c *Consumer) Consume(ctx context.Context, handler ChangeHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Realtime] Error reading push message: %v", err)
				continue
			}

			var change OrderChange
			if err := json.Unmarshal(msg.Value, &change); err != nil {
				log.Printf("[Realtime] Skipping undecodable push %s: %v", string(msg.Key), err)
				continue
			}

			if err := handler(ctx, change); err != nil {
				log.Printf("[Realtime] Error handling change for order %s: %v", change.Order.ID, err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
