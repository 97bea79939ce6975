// services/collection-service/internal/invoice/invoice_store.go

package invoice

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceStore handles persistence operations for invoices.
// Placed in the invoice package to avoid import cycles between store and invoice.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*Invoice, error)

	// ApplyPayment adds amount to paid_amount and sets status = paid once the
	// total is reached. It must enforce paid_amount + amount <= total_amount
	// and a payable status in the same statement, returning ErrPaidExceedsTotal
	// or ErrInvoiceNotPayable when the guard fails.
	ApplyPayment(ctx context.Context, invoiceID uuid.UUID, amount int64) (*Invoice, error)
}
