// services/collection-service/internal/reconciliation/reconciliation.interfaces.go
package reconciliation

import (
	"context"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/google/uuid"
)

type DepositReader interface {
	GetDepositByID(ctx context.Context, id uuid.UUID) (*deposit.DepositBatch, error)
	MarkDepositConfirmed(ctx context.Context, id uuid.UUID, at time.Time, by uuid.UUID) error
}

type PaymentReader interface {
	GetPaymentsByIDs(ctx context.Context, ids []uuid.UUID) ([]payment.Payment, error)
}

type InvoiceApplier interface {
	GetInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*invoice.Invoice, error)
	ApplyPayment(ctx context.Context, invoiceID uuid.UUID, amount int64) (*invoice.Invoice, error)
}

type AssignmentLister interface {
	ListAssignments(ctx context.Context, f assignment.Filter) ([]assignment.CollectorAssignment, error)
}

// AssignmentConfirmer performs deposited -> confirmed.
type AssignmentConfirmer interface {
	ConfirmDeposited(ctx context.Context, actor auth.Actor, ids []uuid.UUID, at time.Time) error
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditLog interface {
	AppendAuditEvent(ctx context.Context, e *audit.Event) error
}

// ConfirmNotifier is told about settlements after commit.
type ConfirmNotifier interface {
	DepositConfirmed(ctx context.Context, s Settlement) error
}
