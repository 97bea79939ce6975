// services/collection-service/internal/payment/recorder.payment.go
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/google/uuid"
)

// InvoiceReader is the only invoice capability the recorder needs.
type InvoiceReader interface {
	GetInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*invoice.Invoice, error)
}

// Recorder captures money received against an invoice.
type Recorder struct {
	invoices InvoiceReader
	payments PaymentStore
	clock    func() time.Time
	currency string // used when an invoice carries none
}

func NewRecorder(invoices InvoiceReader, payments PaymentStore) *Recorder {
	return &Recorder{
		invoices: invoices,
		payments: payments,
		clock:    time.Now,
	}
}

// WithClock overrides the time source (tests).
func (r *Recorder) WithClock(clock func() time.Time) *Recorder {
	r.clock = clock
	return r
}

func (r *Recorder) WithDefaultCurrency(code string) *Recorder {
	r.currency = code
	return r
}

// Validate runs every check RecordPayment does without writing anything.
func (r *Recorder) Validate(ctx context.Context, req RecordRequest) (*invoice.Invoice, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, req.Amount)
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, req.Method)
	}
	inv, err := r.invoices.GetInvoiceByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	// Gatekeeper: only open invoices take money.
	if !inv.IsPayable() {
		return nil, fmt.Errorf("%w: invoice %s is %s", invoice.ErrInvoiceNotPayable, inv.InvoiceID, inv.Status)
	}
	// PaidAmount moves only on confirm, so money already in the field counts too.
	pending, err := r.payments.UnconfirmedAmount(ctx, inv.InvoiceID, req.CollectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum unconfirmed payments: %w", err)
	}
	if outstanding := inv.Outstanding() - pending; req.Amount > outstanding {
		return nil, fmt.Errorf("%w: amount %d, outstanding %d (%d awaiting confirmation)",
			ErrExceedsOutstanding, req.Amount, outstanding, pending)
	}
	return inv, nil
}

// RecordPayment persists an immutable Payment. Nothing is applied to the
// invoice here; that happens when finance confirms the deposit.
func (r *Recorder) RecordPayment(ctx context.Context, req RecordRequest) (*Payment, error) {
	inv, err := r.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	now := r.clock().UTC()
	currency := inv.Currency
	if currency == "" {
		currency = r.currency
	}
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	p := &Payment{
		ID:          uuid.New(),
		TenantID:    inv.TenantID,
		InvoiceID:   inv.InvoiceID,
		ClientID:    inv.ClientID,
		Amount:      req.Amount,
		Currency:    currency,
		Method:      req.Method,
		CollectorID: req.CollectorID,
		ReceivedAt:  receivedAt.UTC(),
		CreatedAt:   now,
	}
	if err := r.payments.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}
	return p, nil
}
