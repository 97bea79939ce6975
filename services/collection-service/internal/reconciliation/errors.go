// services/collection-service/internal/reconciliation/errors.go
package reconciliation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrOverpayment is an integrity error: applying the batch would push an
	// invoice past its total. It is never truncated.
	ErrOverpayment = errors.New("payments would exceed invoice total")

	// ErrBatchIntegrity: the stored payments do not match the batch.
	ErrBatchIntegrity = errors.New("deposit batch does not match its payments")
)

// OverpaymentError names the invoice that would be overpaid.
type OverpaymentError struct {
	InvoiceID uuid.UUID
	Total     int64
	Paid      int64
	Applying  int64
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("%s: invoice %s total %d, paid %d, applying %d",
		ErrOverpayment, e.InvoiceID, e.Total, e.Paid, e.Applying)
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }
