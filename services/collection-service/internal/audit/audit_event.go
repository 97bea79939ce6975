// services/collection-service/internal/audit/audit_event.go
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ActionAssignmentCreated = "ASSIGNMENT_CREATED"
	ActionVisitSucceeded    = "VISIT_SUCCEEDED"
	ActionVisitFailed       = "VISIT_FAILED"
	ActionDepositSubmitted  = "DEPOSIT_SUBMITTED"
	ActionDepositConfirmed  = "DEPOSIT_CONFIRMED"
)

// Event is an immutable settlement record: who did what to which resource, when.
// Audit rows are append-only.
type Event struct {
	ID          uuid.UUID
	ActorUserID *uuid.UUID // nil for system actions
	TenantID    uuid.UUID
	Action      string
	TargetID    uuid.UUID
	Metadata    map[string]any
	CreatedAt   time.Time
}

type Store interface {
	AppendAuditEvent(ctx context.Context, e *Event) error
}

// NewEvent stamps an event. A nil actor id means the system acted.
func NewEvent(actorID uuid.UUID, tenantID uuid.UUID, action string, target uuid.UUID, meta map[string]any, at time.Time) *Event {
	var actor *uuid.UUID
	if actorID != uuid.Nil {
		id := actorID
		actor = &id
	}
	return &Event{
		ID:          uuid.New(),
		ActorUserID: actor,
		TenantID:    tenantID,
		Action:      action,
		TargetID:    target,
		Metadata:    meta,
		CreatedAt:   at.UTC(),
	}
}
