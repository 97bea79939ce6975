// shared/rabbitmq/client.go
package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitmqClient struct {
	//conn is a tcp connection to rabbitmq server
	conn *amqp.Connection
	// amqp channels are not safe for concurrent publishing
	mu  sync.Mutex
	chn *amqp.Channel
}

func NewClient(url string) (*RabbitmqClient, error) {
	//Dial the server
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	//Open a channel. This opens a logical session inside the connection.
	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &RabbitmqClient{
		conn: conn,
		chn:  chn,
	}, nil
}

// Close cleans up
func (r *RabbitmqClient) Close() error {
	if err := r.chn.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// CreateQueue prepares a durable queue to hold messages
func (r *RabbitmqClient) CreateQueue(queueName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.chn.QueueDeclare(
		queueName, //name of queue
		true,      //durable
		false,     //delete when unused
		false,     //exclusive
		false,     //no-wait
		nil,       //arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	return nil
}

// Publish sends a persistent JSON message to a specific queue. msgType
// becomes the AMQP type property so workers can route without decoding.
func (r *RabbitmqClient) Publish(ctx context.Context, queueName, msgType string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chn.PublishWithContext(
		ctx,
		"",        //exchange
		queueName, //routing key (queue name)
		false,     //mandatory
		false,     //immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // make message persistent
			MessageId:    uuid.NewString(),
			Type:         msgType,
			Body:         body, //actual data payload
		},
	)
}

// Consume starts listening for messages from a specific queue.
// It returns a read-only channel that delivers messages as they arrive;
// deliveries must be acked by the caller.
func (r *RabbitmqClient) Consume(queueName string) (<-chan amqp.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs, err := r.chn.Consume(
		queueName, //queue
		"",        //consumer
		false,     //auto-ack
		false,     //exclusive
		false,     //no-local
		false,     //no-wait
		nil,       //args
	)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
