// services/collection-service/internal/workflow/confirm_deposit_workflow.go
package workflow

import (
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/activities"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const TaskQueue = "COLLECTION_TASK_QUEUE"

// ConfirmDepositWorkflow settles one deposit. Transient failures (database
// down, lock timeouts) are retried with backoff; integrity errors end the
// workflow on the first attempt.
func ConfirmDepositWorkflow(ctx workflow.Context, req activities.ConfirmRequest) (reconciliation.Settlement, error) {
	retrypolicy := &temporal.RetryPolicy{
		InitialInterval:        time.Second,
		BackoffCoefficient:     2.0,
		MaximumInterval:        time.Minute,
		MaximumAttempts:        20,
		NonRetryableErrorTypes: activities.NonRetryableTypes(),
	}

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         retrypolicy,
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	logger := workflow.GetLogger(ctx)
	logger.Info("Confirming deposit", "request", activities.Describe(req))

	var settlement reconciliation.Settlement
	err := workflow.ExecuteActivity(ctx, activities.ConfirmDepositActivity, req).Get(ctx, &settlement)
	if err != nil {
		logger.Error("Deposit confirmation failed", "deposit", req.DepositID.String(), "error", err)
		return reconciliation.Settlement{}, err
	}
	return settlement, nil
}
