// services/collection-service/internal/invoice/errors.go

package invoice

import "errors"

var (
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvoiceNotPayable is returned for draft, paid and cancelled invoices.
	ErrInvoiceNotPayable = errors.New("invoice does not accept payments in its current status")

	// ErrPaidExceedsTotal is the store-level guard behind paid_amount <= total_amount.
	ErrPaidExceedsTotal = errors.New("paid amount would exceed invoice total")
)
