// services/collection-service/internal/events/events.go
package events

import (
	"context"
	"errors"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/google/uuid"
)

// Event names published on the collection topic.
const (
	EventDepositSubmitted = "deposit.submitted"
	EventDepositConfirmed = "deposit.confirmed"
	EventInvoicePaid      = "invoice.paid"
)

type DepositSubmittedPayload struct {
	DepositID      uuid.UUID   `json:"deposit_id"`
	TenantID       uuid.UUID   `json:"tenant_id"`
	CollectorID    uuid.UUID   `json:"collector_id"`
	Day            string      `json:"day"`
	Amount         int64       `json:"amount"`
	Currency       string      `json:"currency"`
	PaymentIDs     []uuid.UUID `json:"payment_ids"`
	InvoiceIDs     []uuid.UUID `json:"invoice_ids"`
	ProofURL       string      `json:"proof_url"`
	IdempotencyKey string      `json:"idempotency_key"`
	SubmittedAt    time.Time   `json:"submitted_at"`
}

type DepositConfirmedPayload struct {
	DepositID     uuid.UUID   `json:"deposit_id"`
	TenantID      uuid.UUID   `json:"tenant_id"`
	CollectorID   uuid.UUID   `json:"collector_id"`
	Amount        int64       `json:"amount"`
	Currency      string      `json:"currency"`
	ConfirmedAt   time.Time   `json:"confirmed_at"`
	ConfirmedBy   uuid.UUID   `json:"confirmed_by"`
	AssignmentIDs []uuid.UUID `json:"assignment_ids"`
	PaidInvoices  []uuid.UUID `json:"paid_invoices"`
}

type InvoicePaidPayload struct {
	InvoiceID  uuid.UUID `json:"invoice_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	DepositID  uuid.UUID `json:"deposit_id"`
	PaidAmount int64     `json:"paid_amount"`
	Total      int64     `json:"total"`
	PaidAt     time.Time `json:"paid_at"`
}

func submittedPayload(b deposit.DepositBatch) DepositSubmittedPayload {
	return DepositSubmittedPayload{
		DepositID:      b.ID,
		TenantID:       b.TenantID,
		CollectorID:    b.CollectorID,
		Day:            b.Day,
		Amount:         b.Amount,
		Currency:       b.Currency,
		PaymentIDs:     b.PaymentIDs,
		InvoiceIDs:     b.InvoiceIDs,
		ProofURL:       b.ProofURL,
		IdempotencyKey: b.IdempotencyKey,
		SubmittedAt:    b.SubmittedAt,
	}
}

func confirmedPayload(s reconciliation.Settlement) DepositConfirmedPayload {
	return DepositConfirmedPayload{
		DepositID:     s.DepositID,
		TenantID:      s.TenantID,
		CollectorID:   s.CollectorID,
		Amount:        s.Amount,
		Currency:      s.Currency,
		ConfirmedAt:   s.ConfirmedAt,
		ConfirmedBy:   s.ConfirmedBy,
		AssignmentIDs: s.AssignmentIDs,
		PaidInvoices:  s.PaidInvoices(),
	}
}

// Notifier is told about deposits after they commit. It satisfies both
// deposit.SubmitNotifier and reconciliation.ConfirmNotifier.
type Notifier interface {
	DepositSubmitted(ctx context.Context, b deposit.DepositBatch) error
	DepositConfirmed(ctx context.Context, s reconciliation.Settlement) error
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) DepositSubmitted(ctx context.Context, b deposit.DepositBatch) error {
	var errs []error
	for _, n := range f {
		errs = append(errs, n.DepositSubmitted(ctx, b))
	}
	return errors.Join(errs...)
}

func (f Fanout) DepositConfirmed(ctx context.Context, s reconciliation.Settlement) error {
	var errs []error
	for _, n := range f {
		errs = append(errs, n.DepositConfirmed(ctx, s))
	}
	return errors.Join(errs...)
}
