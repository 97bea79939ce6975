// services/collection-service/internal/activities/deposit_activities.go
package activities

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// ConfirmDepositActivity is the registered activity name.
const ConfirmDepositActivity = "ConfirmDeposit"

// ConfirmRequest is the workflow and activity input.
type ConfirmRequest struct {
	DepositID uuid.UUID  `json:"deposit_id"`
	Actor     auth.Actor `json:"actor"`
}

type DepositActivities struct {
	Confirmer interface {
		Confirm(ctx context.Context, actor auth.Actor, depositID uuid.UUID) (*reconciliation.Settlement, error)
	}
	Deposits interface {
		GetDepositByID(ctx context.Context, id uuid.UUID) (*deposit.DepositBatch, error)
	}
}

// ConfirmDeposit runs the settlement. Integrity and permission failures are
// returned as non-retryable so Temporal gives up at once.
func (a *DepositActivities) ConfirmDeposit(ctx context.Context, req ConfirmRequest) (reconciliation.Settlement, error) {
	s, err := a.Confirmer.Confirm(ctx, req.Actor, req.DepositID)
	if err == nil {
		return *s, nil
	}

	// An earlier attempt may have committed and then timed out.
	if errors.Is(err, deposit.ErrAlreadyConfirmed) && activity.GetInfo(ctx).Attempt > 1 {
		if prior, ok := a.confirmedBy(ctx, req); ok {
			log.Printf("[Reconciliation] Deposit %s was confirmed by an earlier attempt", req.DepositID)
			return prior, nil
		}
	}
	return reconciliation.Settlement{}, Classify(err)
}

func (a *DepositActivities) confirmedBy(ctx context.Context, req ConfirmRequest) (reconciliation.Settlement, bool) {
	if a.Deposits == nil {
		return reconciliation.Settlement{}, false
	}
	b, err := a.Deposits.GetDepositByID(ctx, req.DepositID)
	if err != nil || !b.Confirmed || b.ConfirmedBy == nil || *b.ConfirmedBy != req.Actor.UserID {
		return reconciliation.Settlement{}, false
	}
	return reconciliation.Settlement{
		DepositID:   b.ID,
		TenantID:    b.TenantID,
		CollectorID: b.CollectorID,
		Amount:      b.Amount,
		Currency:    b.Currency,
		ConfirmedAt: *b.ConfirmedAt,
		ConfirmedBy: *b.ConfirmedBy,
	}, true
}

var nonRetryable = []struct {
	kind string
	err  error
}{
	{"Overpayment", reconciliation.ErrOverpayment},
	{"BatchIntegrity", reconciliation.ErrBatchIntegrity},
	{"AlreadyConfirmed", deposit.ErrAlreadyConfirmed},
	{"DepositNotFound", deposit.ErrDepositNotFound},
	{"Forbidden", auth.ErrForbidden},
	{"InvalidTransition", assignment.ErrInvalidTransition},
}

// Classify turns a known domain failure into a non-retryable application
// error. Anything else is returned untouched and retried.
func Classify(err error) error {
	for _, nr := range nonRetryable {
		if errors.Is(err, nr.err) {
			return temporal.NewNonRetryableApplicationError(err.Error(), nr.kind, err)
		}
	}
	return err
}

// NonRetryableTypes lists the application error types Classify produces.
func NonRetryableTypes() []string {
	kinds := make([]string, len(nonRetryable))
	for i, nr := range nonRetryable {
		kinds[i] = nr.kind
	}
	return kinds
}

// Sentinel maps an application error type back to its domain error.
func Sentinel(kind string) (error, bool) {
	for _, nr := range nonRetryable {
		if nr.kind == kind {
			return nr.err, true
		}
	}
	return nil, false
}

// Describe is used in log lines.
func Describe(req ConfirmRequest) string {
	return fmt.Sprintf("deposit %s by %s (%s)", req.DepositID, req.Actor.UserID, req.Actor.Role)
}
