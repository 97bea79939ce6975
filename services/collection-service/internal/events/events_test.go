// services/collection-service/internal/events/events_test.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/NaonWae12/RR-Net-sub002/shared/kafka"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key, event string
	payload    interface{}
}

// MockPublisher records events instead of writing to Kafka.
type MockPublisher struct {
	events  []published
	failOn  string
	failErr error
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return m.PublishEvent(ctx, key, "", value)
}

func (m *MockPublisher) PublishEvent(ctx context.Context, key, event string, payload interface{}) error {
	if event == m.failOn {
		return m.failErr
	}
	m.events = append(m.events, published{key: key, event: event, payload: payload})
	return nil
}

func (m *MockPublisher) Close() error { return nil }

type queued struct {
	queue, msgType string
	body           []byte
}

// MockQueue records RabbitMQ publishes.
type MockQueue struct {
	msgs []queued
	err  error
}

func (m *MockQueue) Publish(ctx context.Context, queueName, msgType string, body []byte) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, queued{queue: queueName, msgType: msgType, body: body})
	return nil
}

func sampleSettlement() reconciliation.Settlement {
	return reconciliation.Settlement{
		DepositID:   uuid.New(),
		TenantID:    uuid.New(),
		CollectorID: uuid.New(),
		Amount:      250_000,
		Currency:    "IDR",
		ConfirmedAt: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		ConfirmedBy: uuid.New(),
		Invoices: []reconciliation.InvoiceSettlement{
			{InvoiceID: uuid.New(), Applied: 150_000, PaidAmount: 150_000, Total: 150_000, Status: invoice.InvoicePaid},
			{InvoiceID: uuid.New(), Applied: 100_000, PaidAmount: 100_000, Total: 150_000, Status: invoice.InvoicePending},
		},
	}
}

func TestKafkaEmitter_DepositConfirmed(t *testing.T) {
	// 1. SETUP
	pub := &MockPublisher{}
	emitter := NewKafkaEmitter(pub)
	s := sampleSettlement()

	// 2. EXECUTE
	err := emitter.DepositConfirmed(context.Background(), s)

	// 3. ASSERT
	require.NoError(t, err)
	require.Len(t, pub.events, 2, "deposit.confirmed plus one invoice.paid for the closed invoice")
	assert.Equal(t, EventDepositConfirmed, pub.events[0].event)
	assert.Equal(t, EventInvoicePaid, pub.events[1].event)
	for _, e := range pub.events {
		assert.Equal(t, s.DepositID.String(), e.key)
	}
	paid := pub.events[1].payload.(InvoicePaidPayload)
	assert.Equal(t, s.Invoices[0].InvoiceID, paid.InvoiceID)
	assert.Equal(t, int64(150_000), paid.PaidAmount)
}

func TestKafkaEmitter_Errors(t *testing.T) {
	boom := errors.New("broker down")

	pub := &MockPublisher{failOn: EventDepositSubmitted, failErr: boom}
	err := NewKafkaEmitter(pub).DepositSubmitted(context.Background(), deposit.DepositBatch{ID: uuid.New()})
	assert.ErrorIs(t, err, boom)

	pub = &MockPublisher{failOn: EventInvoicePaid, failErr: boom}
	err = NewKafkaEmitter(pub).DepositConfirmed(context.Background(), sampleSettlement())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, pub.events, 1, "deposit.confirmed is still published")
}

func TestRabbitNotifier_Routes(t *testing.T) {
	q := &MockQueue{}
	n := NewRabbitNotifier(q)
	ctx := context.Background()
	b := deposit.DepositBatch{ID: uuid.New(), Amount: 250_000, Currency: "IDR"}

	require.NoError(t, n.DepositSubmitted(ctx, b))
	require.NoError(t, n.DepositConfirmed(ctx, sampleSettlement()))
	require.NoError(t, n.RemindStale(ctx, b))

	require.Len(t, q.msgs, 3)
	assert.Equal(t, FinanceReviewQueue, q.msgs[0].queue)
	assert.Equal(t, JobReviewDeposit, q.msgs[0].msgType)
	assert.Equal(t, CollectorNoticeQueue, q.msgs[1].queue)
	assert.Equal(t, JobDepositSettled, q.msgs[1].msgType)
	assert.Equal(t, JobStaleDeposit, q.msgs[2].msgType)

	var job Job
	require.NoError(t, json.Unmarshal(q.msgs[0].body, &job))
	var payload DepositSubmittedPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, b.ID, payload.DepositID)
	assert.Equal(t, int64(250_000), payload.Amount)
}

func TestRabbitNotifier_Bridge(t *testing.T) {
	tests := []struct {
		name      string
		value     []byte
		queueErr  error
		wantQueue string
		wantErr   bool
	}{
		{
			name:      "Submitted goes to finance",
			value:     envelope(t, EventDepositSubmitted),
			wantQueue: FinanceReviewQueue,
		},
		{
			name:      "Confirmed goes to the collector",
			value:     envelope(t, EventDepositConfirmed),
			wantQueue: CollectorNoticeQueue,
		},
		{
			name:  "Invoice paid is not a notification",
			value: envelope(t, EventInvoicePaid),
		},
		{
			name:  "Garbage is dropped",
			value: []byte("{not json"),
		},
		{
			name:     "Queue failure is retried",
			value:    envelope(t, EventDepositSubmitted),
			queueErr: errors.New("channel closed"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &MockQueue{err: tt.queueErr}
			err := NewRabbitNotifier(q).Bridge(context.Background(), []byte("k"), tt.value)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantQueue == "" {
				assert.Empty(t, q.msgs)
				return
			}
			require.Len(t, q.msgs, 1)
			assert.Equal(t, tt.wantQueue, q.msgs[0].queue)
		})
	}
}

func TestFanout_JoinsErrors(t *testing.T) {
	boom := errors.New("queue down")
	ok := NewRabbitNotifier(&MockQueue{})
	failing := NewRabbitNotifier(&MockQueue{err: boom})

	err := Fanout{ok, failing}.DepositSubmitted(context.Background(), deposit.DepositBatch{ID: uuid.New()})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, Fanout{ok}.DepositConfirmed(context.Background(), sampleSettlement()))
}

func envelope(t *testing.T, event string) []byte {
	t.Helper()
	b, err := json.Marshal(kafka.Envelope{Event: event, Payload: json.RawMessage(`{"deposit_id":"x"}`)})
	require.NoError(t, err)
	return b
}
