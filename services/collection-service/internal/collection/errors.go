// services/collection-service/internal/collection/errors.go
package collection

import "errors"

var (
	// ErrAmountMismatch: a full payment must equal the computed due amount and a
	// partial amount must equal its backing payment.
	ErrAmountMismatch = errors.New("payment amount does not match ledger amount")

	// ErrNotPartial: a partial amount must be positive and below the due amount.
	ErrNotPartial = errors.New("partial amount must be greater than zero and less than the amount due")

	ErrClientMismatch   = errors.New("payment belongs to a different client")
	ErrForeignPayment   = errors.New("payment was collected by a different collector")
	ErrDuplicatePayment = errors.New("payment already recorded in this ledger")

	// ErrLedgerLocked is returned for mutations while a deposit built from this
	// ledger is being submitted or awaits status resolution.
	ErrLedgerLocked = errors.New("ledger is locked by a pending deposit submission")
)
