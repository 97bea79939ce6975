// services/collection-service/internal/payment/payment_store.go

package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentStore handles the persistence of payments.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p *Payment) error
	// GetPaymentsByIDs returns the payments found; missing ids are simply absent.
	GetPaymentsByIDs(ctx context.Context, ids []uuid.UUID) ([]Payment, error)
	// AttachToDeposit links every payment to depositID. It must only touch rows
	// with deposit_id IS NULL AND voided_at IS NULL, and fail with
	// ErrPaymentAlreadyDeposited unless all ids were linked.
	AttachToDeposit(ctx context.Context, depositID uuid.UUID, paymentIDs []uuid.UUID) error
	// VoidPayments marks superseded payments void under the same guard.
	VoidPayments(ctx context.Context, paymentIDs []uuid.UUID, reason string) error
	// UnconfirmedAmount sums the unvoided payments on invoiceID that are not
	// yet part of a confirmed deposit. Undeposited payments of collectorID are
	// left out: its open ledger replaces them.
	UnconfirmedAmount(ctx context.Context, invoiceID uuid.UUID, collectorID *uuid.UUID) (int64, error)
}
