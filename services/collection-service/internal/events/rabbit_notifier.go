// services/collection-service/internal/events/rabbit_notifier.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/NaonWae12/RR-Net-sub002/shared/kafka"
)

const (
	FinanceReviewQueue   = "finance_review_jobs"
	CollectorNoticeQueue = "collector_notice_jobs"
)

// Job types carried in the AMQP type property.
const (
	JobReviewDeposit  = "review_deposit"
	JobDepositSettled = "deposit_settled"
	JobStaleDeposit   = "stale_deposit_reminder"
)

// QueuePublisher is the part of the RabbitMQ client the notifier uses.
type QueuePublisher interface {
	Publish(ctx context.Context, queueName, msgType string, body []byte) error
}

// Job is the message body on the notification queues.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RabbitNotifier turns deposit events into notification jobs: finance is asked
// to review new deposits, collectors are told when theirs settle.
type RabbitNotifier struct {
	client QueuePublisher
}

func NewRabbitNotifier(client QueuePublisher) *RabbitNotifier {
	return &RabbitNotifier{client: client}
}

// Queues lists the queues the notifier publishes to, for declaration at startup.
func Queues() []string {
	return []string{FinanceReviewQueue, CollectorNoticeQueue}
}

func (n *RabbitNotifier) DepositSubmitted(ctx context.Context, b deposit.DepositBatch) error {
	return n.enqueue(ctx, FinanceReviewQueue, JobReviewDeposit, submittedPayload(b))
}

func (n *RabbitNotifier) DepositConfirmed(ctx context.Context, s reconciliation.Settlement) error {
	return n.enqueue(ctx, CollectorNoticeQueue, JobDepositSettled, confirmedPayload(s))
}

// RemindStale asks finance again about a deposit left unconfirmed.
func (n *RabbitNotifier) RemindStale(ctx context.Context, b deposit.DepositBatch) error {
	return n.enqueue(ctx, FinanceReviewQueue, JobStaleDeposit, submittedPayload(b))
}

// Bridge is a kafka.Handler translating collection events into jobs. Unknown
// events are skipped; a publish failure is returned so the offset is retried.
func (n *RabbitNotifier) Bridge(ctx context.Context, key []byte, value []byte) error {
	var env kafka.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		// a poison message would block the partition forever
		log.Printf("[Bridge] [WARN] Dropping undecodable message %s: %v", key, err)
		return nil
	}
	switch env.Event {
	case EventDepositSubmitted:
		return n.publish(ctx, FinanceReviewQueue, JobReviewDeposit, env.Payload)
	case EventDepositConfirmed:
		return n.publish(ctx, CollectorNoticeQueue, JobDepositSettled, env.Payload)
	default:
		return nil
	}
}

func (n *RabbitNotifier) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s job: %w", jobType, err)
	}
	return n.publish(ctx, queue, jobType, raw)
}

func (n *RabbitNotifier) publish(ctx context.Context, queue, jobType string, payload json.RawMessage) error {
	body, err := json.Marshal(Job{Type: jobType, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal %s job: %w", jobType, err)
	}
	if err := n.client.Publish(ctx, queue, jobType, body); err != nil {
		return fmt.Errorf("failed to publish %s job to %s: %w", jobType, queue, err)
	}
	return nil
}
