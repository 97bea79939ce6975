// services/collection-service/internal/deposit/models.deposit.go
package deposit

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// DepositBatch is one collector submission. It is immutable once created,
// except for the confirmation fields.
type DepositBatch struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	CollectorID uuid.UUID
	Day         string
	Amount      int64 // sum of the payments in PaymentIDs
	Currency    string

	ClientIDs  []uuid.UUID
	PaymentIDs []uuid.UUID
	InvoiceIDs []uuid.UUID
	// VoidedPaymentIDs are superseded ledger payments, voided by the same transaction.
	VoidedPaymentIDs []uuid.UUID

	ProofURL       string
	IdempotencyKey string
	SubmittedAt    time.Time

	Confirmed   bool
	ConfirmedAt *time.Time
	ConfirmedBy *uuid.UUID

	// Proof is the attachment to upload. It is never persisted.
	Proof *Attachment `json:"-"`
}

// Attachment is an opaque proof reference: content type, size and a byte stream.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Confirmation is the result of a successful submit.
type Confirmation struct {
	DepositID      uuid.UUID
	IdempotencyKey string
	Amount         int64
	AssignmentIDs  []uuid.UUID
	// Replayed is true when the deposit already existed server side and no new
	// batch was created.
	Replayed bool
}
