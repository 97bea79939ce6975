// services/collection-service/internal/deposit/deposit.interfaces.go
package deposit

import (
	"context"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/google/uuid"
)

// The aggregator depends on these interfaces, never on a concrete store.
//
//go:generate mockgen -destination=mocks/mock_interfaces.go -source=deposit.interfaces.go

// DepositStore persists deposit batches.
type DepositStore interface {
	// CreateDeposit fails with ErrDuplicateDeposit when the idempotency key exists.
	CreateDeposit(ctx context.Context, b *DepositBatch) error
	GetDepositByID(ctx context.Context, id uuid.UUID) (*DepositBatch, error)
	GetDepositByIdempotencyKey(ctx context.Context, key string) (*DepositBatch, error)
	// MarkDepositConfirmed is a CAS on confirmed = false. It fails with
	// ErrAlreadyConfirmed when the flag is already set.
	MarkDepositConfirmed(ctx context.Context, id uuid.UUID, at time.Time, by uuid.UUID) error
	ListUnconfirmedDeposits(ctx context.Context, submittedBefore time.Time, limit int) ([]DepositBatch, error)
	ListConfirmedDeposits(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]DepositBatch, error)
}

// PaymentLinker links payments to the deposit that carries them.
type PaymentLinker interface {
	AttachToDeposit(ctx context.Context, depositID uuid.UUID, paymentIDs []uuid.UUID) error
	VoidPayments(ctx context.Context, paymentIDs []uuid.UUID, reason string) error
}

// AssignmentApplier moves visit_success assignments to deposited.
type AssignmentApplier interface {
	ApplyDeposit(ctx context.Context, collectorID uuid.UUID, invoiceIDs []uuid.UUID, stamp assignment.DepositStamp) ([]uuid.UUID, error)
}

// ProofStore stores a proof attachment and returns where it can be fetched.
type ProofStore interface {
	Put(ctx context.Context, key string, a Attachment) (string, error)
}

// TxManager runs fn in one database transaction carried by the context.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditLog interface {
	AppendAuditEvent(ctx context.Context, e *audit.Event) error
}

// SubmitNotifier is told about new deposits after commit.
type SubmitNotifier interface {
	DepositSubmitted(ctx context.Context, b DepositBatch) error
}
