// services/collection-service/internal/deposit/errors.go
package deposit

import (
	"errors"
	"fmt"
)

var (
	// Validation errors: detected before any I/O and never retried.
	ErrEmptyDeposit      = errors.New("nothing collected: deposit would be empty")
	ErrMissingProof      = errors.New("deposit proof attachment is required")
	ErrInvalidAttachment = errors.New("invalid proof attachment")
	ErrMixedCurrency     = errors.New("ledger holds payments in more than one currency")

	// ErrAmountMismatch means the batch amount differs from the sum of its
	// payments. It signals a bug, never a user mistake.
	ErrAmountMismatch = errors.New("deposit amount does not match its payments")

	// Submission lock.
	ErrAlreadySubmitted   = errors.New("deposit was already submitted")
	ErrSubmissionInFlight = errors.New("a submission for this deposit is already in flight")

	// ErrTransient wraps failures that may be retried without re-entering data.
	ErrTransient = errors.New("deposit submission failed temporarily, retry")

	ErrDepositNotFound = errors.New("deposit not found")
	// ErrDuplicateDeposit is returned by the store when the idempotency key already exists.
	ErrDuplicateDeposit = errors.New("deposit with this idempotency key already exists")
	ErrAlreadyConfirmed = errors.New("deposit is already confirmed")
)

// AttachmentError explains why a proof attachment was refused.
type AttachmentError struct {
	Field  string
	Reason string
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidAttachment, e.Field, e.Reason)
}

func (e *AttachmentError) Unwrap() error { return ErrInvalidAttachment }
