// shared/kafka/consumer.go
package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Reader is the subset of kafka.Reader the consumer loop needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one message. A returned error leaves the offset
// uncommitted so the message is delivered again.
type Handler func(ctx context.Context, key []byte, value []byte) error

// Consumer holds the connection to the Kafka server.
type Consumer struct {
	reader         Reader
	label          string
	handlerTimeout time.Duration
	retryDelay     time.Duration
}

// NewConsumer joins groupID on topic. Copies of the same binary in one group
// split the partitions between them.
func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return NewConsumerWithReader(r, topic+"/"+groupID)
}

// NewConsumerWithReader allows injecting a test reader.
func NewConsumerWithReader(r Reader, label string) *Consumer {
	return &Consumer{
		reader:         r,
		label:          label,
		handlerTimeout: 10 * time.Second,
		retryDelay:     time.Second,
	}
}

// Start runs the fetch-handle-commit loop until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	log.Printf("[Kafka] Consumer started: %s", c.label)

	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Kafka] [WARN] Error fetching message: %v", err)
			c.sleep(ctx)
			continue
		}

		processCtx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
		err = handler(processCtx, m.Key, m.Value)
		cancel()

		if err != nil {
			// not committed: Kafka redelivers the same message
			log.Printf("[Kafka] Processing failed (offset %d): %v", m.Offset, err)
			c.sleep(ctx)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Printf("[Kafka] Failed to commit offset %d: %v", m.Offset, err)
		}
	}
}

func (c *Consumer) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.retryDelay):
	}
}

// Close disconnects from the server.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
