// services/collection-service/internal/invoice/invoice_models.go

package invoice

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice is created upstream by billing. This subsystem only moves PaidAmount
// (through applied payments) and flips Status to paid.
type Invoice struct {
	InvoiceID   uuid.UUID
	TenantID    uuid.UUID
	ClientID    uuid.UUID
	TotalAmount int64 // minor units
	PaidAmount  int64 // minor units, never decreases, never exceeds TotalAmount
	Currency    string
	DueDate     time.Time
	Status      InvoiceStatus
	CreatedAt   time.Time
	PaidAt      *time.Time
}

// Outstanding is what is still owed.
func (inv *Invoice) Outstanding() int64 {
	return inv.TotalAmount - inv.PaidAmount
}

// IsPayable reports whether money may still be applied to the invoice.
func (inv *Invoice) IsPayable() bool {
	return inv.Status == InvoicePending || inv.Status == InvoiceOverdue
}
