package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes order changes to the push topic, keyed by order id so
// changes for one order stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishOrderChange(ctx context.Context, change OrderChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(change.Order.ID),
		Value: data,
		Time:  change.OccurredAt,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaFeed implements Feed over the push topic. Each subscription gets its
// own reader in a fresh consumer group starting at the latest offset, so it
// only observes changes pushed after the subscribe call.
type KafkaFeed struct {
	brokers []string
	topic   string
}

func NewKafkaFeed(brokers []string, topic string) *KafkaFeed {
	return &KafkaFeed{brokers: brokers, topic: topic}
}

func (f *KafkaFeed) Subscribe(ctx context.Context, orderID string) (<-chan OrderChange, func(), error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     f.brokers,
		Topic:       f.topic,
		GroupID:     "order-feed-" + uuid.New().String(),
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})

	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan OrderChange)

	go func() {
		defer close(ch)
		for {
			msg, err := reader.ReadMessage(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					log.Printf("[Realtime] Error reading push message: %v", err)
				}
				return
			}
			if string(msg.Key) != orderID {
				continue
			}
			var change OrderChange
			if err := json.Unmarshal(msg.Value, &change); err != nil {
				log.Printf("[Realtime] Dropping undecodable push for order %s: %v", orderID, err)
				continue
			}
			select {
			case ch <- change:
			case <-subCtx.Done():
				return
			}
		}
	}()

	release := func() {
		cancel()
		if err := reader.Close(); err != nil {
			log.Printf("[Realtime] Error closing subscription reader: %v", err)
		}
	}
	return ch, release, nil
}
