// services/collection-service/internal/assignment/models.assignment.go
package assignment

import (
	"time"

	"github.com/google/uuid"
)

type WorkflowStatus string

const (
	StatusAssigned     WorkflowStatus = "assigned"
	StatusVisitSuccess WorkflowStatus = "visit_success"
	StatusVisitFailed  WorkflowStatus = "visit_failed"
	StatusDeposited    WorkflowStatus = "deposited"
	StatusConfirmed    WorkflowStatus = "confirmed"
)

// IsActive reports whether the assignment still occupies its invoice.
func (s WorkflowStatus) IsActive() bool {
	return s == StatusAssigned || s == StatusVisitSuccess || s == StatusDeposited
}

func (s WorkflowStatus) IsTerminal() bool {
	return s == StatusVisitFailed || s == StatusConfirmed
}

func (s WorkflowStatus) Valid() bool {
	switch s {
	case StatusAssigned, StatusVisitSuccess, StatusVisitFailed, StatusDeposited, StatusConfirmed:
		return true
	}
	return false
}

// CollectorAssignment is one invoice handed to one collector for one attempt.
// Every optional field is written by exactly one transition and is read-only afterwards.
type CollectorAssignment struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	InvoiceID   uuid.UUID
	CollectorID uuid.UUID
	Status      WorkflowStatus

	// visit_success / visit_failed
	VisitNotes    *string
	VisitPhotoURL *string
	FailureReason *string
	VisitedAt     *time.Time

	// deposited
	DepositID          *uuid.UUID
	DepositProofURL    *string
	DepositSubmittedAt *time.Time

	// confirmed
	ConfirmedAt *time.Time
	ConfirmedBy *uuid.UUID

	CreatedAt time.Time
}

// Transition is a CAS patch: it applies only while the row is still in From.
// nil fields are left as they are.
type Transition struct {
	From WorkflowStatus
	To   WorkflowStatus

	VisitNotes    *string
	VisitPhotoURL *string
	FailureReason *string
	VisitedAt     *time.Time

	DepositID          *uuid.UUID
	DepositProofURL    *string
	DepositSubmittedAt *time.Time

	ConfirmedAt *time.Time
	ConfirmedBy *uuid.UUID
}

// Filter narrows assignment listings. Zero values mean "any".
type Filter struct {
	TenantID    *uuid.UUID
	CollectorID *uuid.UUID
	Statuses    []WorkflowStatus
	InvoiceIDs  []uuid.UUID
	DepositID   *uuid.UUID
	Limit       int
	Offset      int
}

// VisitReport is what a collector files after a successful visit.
type VisitReport struct {
	Notes    string
	PhotoURL string
}

// DepositStamp is written onto assignments when a deposit is submitted.
type DepositStamp struct {
	DepositID   uuid.UUID
	ProofURL    string
	SubmittedAt time.Time
}
