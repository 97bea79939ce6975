// services/collection-service/internal/workflow/starter.go
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/activities"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
)

type workflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Starter confirms deposits through Temporal. It has the same shape as
// reconciliation.Service.Confirm so the API can use either.
type Starter struct {
	client    workflowClient
	taskQueue string
}

func NewStarter(c client.Client, taskQueue string) *Starter {
	return newStarter(c, taskQueue)
}

func newStarter(c workflowClient, taskQueue string) *Starter {
	if taskQueue == "" {
		taskQueue = TaskQueue
	}
	return &Starter{client: c, taskQueue: taskQueue}
}

// Confirm starts (or joins) the workflow for the deposit and waits for it.
// The workflow id is derived from the deposit, so two requests for the same
// deposit share one run.
func (s *Starter) Confirm(ctx context.Context, actor auth.Actor, depositID uuid.UUID) (*reconciliation.Settlement, error) {
	if !actor.Is(auth.RoleFinance) {
		return nil, fmt.Errorf("%w: only finance confirms deposits", auth.ErrForbidden)
	}
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(depositID),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, ConfirmDepositWorkflow, activities.ConfirmRequest{DepositID: depositID, Actor: actor})
	if err != nil {
		return nil, fmt.Errorf("failed to start confirm workflow: %w", err)
	}

	var settlement reconciliation.Settlement
	if err := run.Get(ctx, &settlement); err != nil {
		return nil, fromWorkflowError(err)
	}
	return &settlement, nil
}

func WorkflowID(depositID uuid.UUID) string {
	return "confirm-deposit-" + depositID.String()
}

// fromWorkflowError restores the domain sentinel behind a non-retryable
// failure so callers can keep using errors.Is.
func fromWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		if sentinel, ok := activities.Sentinel(appErr.Type()); ok {
			return &remoteError{sentinel: sentinel, msg: appErr.Message()}
		}
	}
	return err
}

// remoteError keeps the activity's message and unwraps to the sentinel.
type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() error { return e.sentinel }
