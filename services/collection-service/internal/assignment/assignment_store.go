// services/collection-service/internal/assignment/assignment_store.go
package assignment

import (
	"context"

	"github.com/google/uuid"
)

// AssignmentStore persists assignments.
type AssignmentStore interface {
	// CreateAssignment must fail with ErrActiveAssignmentExists when the invoice
	// already has an assignment in an active status.
	CreateAssignment(ctx context.Context, a *CollectorAssignment) error
	GetAssignmentByID(ctx context.Context, id uuid.UUID) (*CollectorAssignment, error)
	ListAssignments(ctx context.Context, f Filter) ([]CollectorAssignment, error)

	// TransitionAssignment performs the Compare-and-Swap
	// (UPDATE ... WHERE id = $1 AND workflow_status = t.From).
	// 0 rows: ErrAssignmentNotFound if the id is unknown, ErrStaleStatus otherwise.
	TransitionAssignment(ctx context.Context, id uuid.UUID, t Transition) error
}
