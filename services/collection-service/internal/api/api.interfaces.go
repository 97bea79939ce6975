// services/collection-service/internal/api/api.interfaces.go
package api

import (
	"context"
	"io"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/collection"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/report"
	"github.com/google/uuid"
)

type ActorResolver interface {
	Resolve(token string) (auth.Actor, error)
}

type LedgerRegistry interface {
	Open(ctx context.Context, tenantID, collectorID uuid.UUID, day string) (*collection.Ledger, error)
	Get(collectorID uuid.UUID, day string) (*collection.Ledger, bool)
}

type PaymentDesk interface {
	CollectFull(ctx context.Context, ledger *collection.Ledger, clientID uuid.UUID, req payment.RecordRequest) (*payment.Payment, error)
	CollectPartial(ctx context.Context, ledger *collection.Ledger, clientID uuid.UUID, req payment.RecordRequest) (*payment.Payment, error)
}

type DepositSubmitter interface {
	BuildDeposit(ledger *collection.Ledger, proof *deposit.Attachment) (*deposit.DepositBatch, error)
	Submit(ctx context.Context, batch *deposit.DepositBatch, ledger *collection.Ledger) (*deposit.Confirmation, error)
	Get(ctx context.Context, id uuid.UUID) (*deposit.DepositBatch, error)
}

type AssignmentService interface {
	Assign(ctx context.Context, actor auth.Actor, invoiceID, collectorID uuid.UUID) (*assignment.CollectorAssignment, error)
	RecordVisitSuccess(ctx context.Context, actor auth.Actor, id uuid.UUID, report assignment.VisitReport) (*assignment.CollectorAssignment, error)
	RecordVisitFailure(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*assignment.CollectorAssignment, error)
	Get(ctx context.Context, id uuid.UUID) (*assignment.CollectorAssignment, error)
	List(ctx context.Context, actor auth.Actor, f assignment.Filter) ([]assignment.CollectorAssignment, error)
}

// DepositConfirmer is reconciliation.Service, or the Temporal starter when
// confirmation runs as a workflow.
type DepositConfirmer interface {
	Confirm(ctx context.Context, actor auth.Actor, depositID uuid.UUID) (*reconciliation.Settlement, error)
}

type SettlementReporter interface {
	WriteXLSX(ctx context.Context, w io.Writer, tenantID uuid.UUID, from, to time.Time) (report.Totals, error)
}
