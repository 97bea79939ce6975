// shared/kafka/producer.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Writer defines the subset of segmentio kafka.Writer we need. This makes the producer testable.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is the interface used by services to publish events.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	PublishEvent(ctx context.Context, key, event string, payload interface{}) error
	Close() error
}

// Envelope is the wire shape of every event: {"event": "...", "payload": {...}}.
// Consumers switch on Event.
type Envelope struct {
	Event      string          `json:"event"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventHeader carries the event name so consumers can route without decoding.
const EventHeader = "event"

// KafkaProducer is a thin wrapper around a kafka writer implementing Publisher.
type KafkaProducer struct {
	writer Writer
	clock  func() time.Time
}

// NewKafkaProducer creates a real KafkaProducer that writes to the provided broker/topic.
// Messages with the same key (a deposit id) land on the same partition, in order.
func NewKafkaProducer(brokerURL, topic string) *KafkaProducer {
	w := &skafka.Writer{
		Addr:         skafka.TCP(brokerURL),
		Topic:        topic,
		Balancer:     &skafka.Hash{},
		RequiredAcks: skafka.RequireAll,
	}
	return &KafkaProducer{writer: w, clock: time.Now}
}

// NewKafkaProducerWithWriter allows injecting a test writer.
func NewKafkaProducerWithWriter(w Writer) *KafkaProducer {
	return &KafkaProducer{writer: w, clock: time.Now}
}

// Publish marshals the value to JSON and writes a kafka message with the given key.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal kafka value: %w", err)
	}
	return p.write(ctx, skafka.Message{Key: []byte(key), Value: b})
}

// PublishEvent wraps payload in an Envelope and tags the message with the event name.
func (p *KafkaProducer) PublishEvent(ctx context.Context, key, event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	b, err := json.Marshal(Envelope{Event: event, OccurredAt: p.clock().UTC(), Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", event, err)
	}
	return p.write(ctx, skafka.Message{
		Key:     []byte(key),
		Value:   b,
		Headers: []skafka.Header{{Key: EventHeader, Value: []byte(event)}},
	})
}

func (p *KafkaProducer) write(ctx context.Context, msg skafka.Message) error {
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("[Kafka] write error (key %s): %v", msg.Key, err)
		return err
	}
	return nil
}

// Close closes the underlying writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
