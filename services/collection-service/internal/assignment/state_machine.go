// services/collection-service/internal/assignment/state_machine.go
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/google/uuid"
)

var transitions = map[WorkflowStatus][]WorkflowStatus{
	StatusAssigned:     {StatusVisitSuccess, StatusVisitFailed},
	StatusVisitSuccess: {StatusDeposited},
	StatusDeposited:    {StatusConfirmed},
}

// CanTransition reports whether from -> to is an edge of the workflow.
func CanTransition(from, to WorkflowStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Apply validates t against a and, only if every rule holds, applies it.
// On error a is left unchanged.
func Apply(a *CollectorAssignment, t Transition) error {
	if a.Status != t.From {
		return fmt.Errorf("%w: expected %s, found %s", ErrStaleStatus, t.From, a.Status)
	}
	if !CanTransition(t.From, t.To) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.From, t.To)
	}

	next := *a
	if err := firstErr(
		setOnce(&next.VisitNotes, t.VisitNotes, "visit_notes"),
		setOnce(&next.VisitPhotoURL, t.VisitPhotoURL, "visit_photo_url"),
		setOnce(&next.FailureReason, t.FailureReason, "failure_reason"),
		setOnce(&next.VisitedAt, t.VisitedAt, "visited_at"),
		setOnce(&next.DepositID, t.DepositID, "deposit_id"),
		setOnce(&next.DepositProofURL, t.DepositProofURL, "deposit_proof_url"),
		setOnce(&next.DepositSubmittedAt, t.DepositSubmittedAt, "deposit_submitted_at"),
		setOnce(&next.ConfirmedAt, t.ConfirmedAt, "confirmed_at"),
		setOnce(&next.ConfirmedBy, t.ConfirmedBy, "confirmed_by"),
	); err != nil {
		return err
	}
	next.Status = t.To
	*a = next
	return nil
}

func setOnce[T any](dst **T, src *T, field string) error {
	if src == nil {
		return nil
	}
	if *dst != nil {
		return fmt.Errorf("%w: %s", ErrFieldImmutable, field)
	}
	v := *src
	*dst = &v
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// StateMachine is the only writer of assignment status.
type StateMachine struct {
	store             AssignmentStore
	audit             audit.Store
	requireVisitPhoto bool
	clock             func() time.Time
}

func NewStateMachine(store AssignmentStore, auditStore audit.Store, requireVisitPhoto bool) *StateMachine {
	return &StateMachine{
		store:             store,
		audit:             auditStore,
		requireVisitPhoto: requireVisitPhoto,
		clock:             time.Now,
	}
}

func (sm *StateMachine) WithClock(clock func() time.Time) *StateMachine {
	sm.clock = clock
	return sm
}

// Assign hands an invoice to a collector. One invoice has at most one active
// assignment; after visit_failed a new assignment is the only way to retry.
func (sm *StateMachine) Assign(ctx context.Context, actor auth.Actor, invoiceID, collectorID uuid.UUID) (*CollectorAssignment, error) {
	if !actor.Is(auth.RoleAdmin, auth.RoleFinance, auth.RoleSystem) {
		return nil, fmt.Errorf("%w: %s cannot assign invoices", auth.ErrForbidden, actor.Role)
	}
	a := &CollectorAssignment{
		ID:          uuid.New(),
		TenantID:    actor.TenantID,
		InvoiceID:   invoiceID,
		CollectorID: collectorID,
		Status:      StatusAssigned,
		CreatedAt:   sm.clock().UTC(),
	}
	if err := sm.store.CreateAssignment(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	sm.record(ctx, actor, audit.ActionAssignmentCreated, a, map[string]any{
		"invoice_id":   invoiceID.String(),
		"collector_id": collectorID.String(),
	})
	return a, nil
}

// RecordVisitSuccess moves assigned -> visit_success.
func (sm *StateMachine) RecordVisitSuccess(ctx context.Context, actor auth.Actor, id uuid.UUID, report VisitReport) (*CollectorAssignment, error) {
	notes := strings.TrimSpace(report.Notes)
	photo := strings.TrimSpace(report.PhotoURL)
	if notes == "" {
		return nil, fmt.Errorf("%w: notes are required", ErrIncompleteVisit)
	}
	if sm.requireVisitPhoto && photo == "" {
		return nil, fmt.Errorf("%w: a visit photo is required", ErrIncompleteVisit)
	}
	now := sm.clock().UTC()
	t := Transition{From: StatusAssigned, To: StatusVisitSuccess, VisitNotes: &notes, VisitedAt: &now}
	if photo != "" {
		t.VisitPhotoURL = &photo
	}
	a, err := sm.transitionOwned(ctx, actor, id, t)
	if err != nil {
		return nil, err
	}
	sm.record(ctx, actor, audit.ActionVisitSucceeded, a, map[string]any{"has_photo": photo != ""})
	return a, nil
}

// RecordVisitFailure moves assigned -> visit_failed. There is no way out of
// visit_failed.
func (sm *StateMachine) RecordVisitFailure(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*CollectorAssignment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	now := sm.clock().UTC()
	a, err := sm.transitionOwned(ctx, actor, id, Transition{
		From: StatusAssigned, To: StatusVisitFailed, FailureReason: &reason, VisitedAt: &now,
	})
	if err != nil {
		return nil, err
	}
	sm.record(ctx, actor, audit.ActionVisitFailed, a, map[string]any{"reason": reason})
	return a, nil
}

// CheckCollectable fails with ErrInvalidTransition when any of the invoices has
// an active assignment that is not a visit_success held by collectorID.
// Invoices with no assignment, or whose assignment is already deposited, pass.
func (sm *StateMachine) CheckCollectable(ctx context.Context, collectorID uuid.UUID, invoiceIDs []uuid.UUID) error {
	_, err := sm.collectable(ctx, collectorID, invoiceIDs)
	return err
}

func (sm *StateMachine) collectable(ctx context.Context, collectorID uuid.UUID, invoiceIDs []uuid.UUID) ([]CollectorAssignment, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	found, err := sm.store.ListAssignments(ctx, Filter{
		InvoiceIDs: invoiceIDs,
		Statuses:   []WorkflowStatus{StatusAssigned, StatusVisitSuccess},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	for _, a := range found {
		if a.CollectorID != collectorID {
			return nil, fmt.Errorf("%w: invoice %s is assigned to another collector", ErrInvalidTransition, a.InvoiceID)
		}
		if a.Status != StatusVisitSuccess {
			return nil, fmt.Errorf("%w: invoice %s has assignment %s in %s, record the visit first",
				ErrInvalidTransition, a.InvoiceID, a.ID, a.Status)
		}
	}
	return found, nil
}

// ApplyDeposit moves the collector's visit_success assignments for the given
// invoices to deposited. It is called by the deposit flow inside its
// transaction and returns the ids it transitioned. An invoice whose active
// assignment is unvisited or held by someone else fails the whole call, so
// the caller's transaction rolls back.
func (sm *StateMachine) ApplyDeposit(ctx context.Context, collectorID uuid.UUID, invoiceIDs []uuid.UUID, stamp DepositStamp) ([]uuid.UUID, error) {
	found, err := sm.collectable(ctx, collectorID, invoiceIDs)
	if err != nil {
		return nil, err
	}
	depositID := stamp.DepositID
	proof := stamp.ProofURL
	at := stamp.SubmittedAt.UTC()

	ids := make([]uuid.UUID, 0, len(found))
	for _, a := range found {
		t := Transition{
			From:               StatusVisitSuccess,
			To:                 StatusDeposited,
			DepositID:          &depositID,
			DepositProofURL:    &proof,
			DepositSubmittedAt: &at,
		}
		if err := sm.store.TransitionAssignment(ctx, a.ID, t); err != nil {
			return nil, fmt.Errorf("assignment %s: %w", a.ID, err)
		}
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// ConfirmDeposited moves deposited -> confirmed. Finance only.
// Any assignment not in deposited fails the whole call.
func (sm *StateMachine) ConfirmDeposited(ctx context.Context, actor auth.Actor, ids []uuid.UUID, at time.Time) error {
	if !actor.Is(auth.RoleFinance) {
		return fmt.Errorf("%w: only finance confirms deposits", auth.ErrForbidden)
	}
	at = at.UTC()
	by := actor.UserID
	for _, id := range ids {
		t := Transition{From: StatusDeposited, To: StatusConfirmed, ConfirmedAt: &at, ConfirmedBy: &by}
		if err := sm.store.TransitionAssignment(ctx, id, t); err != nil {
			if errors.Is(err, ErrStaleStatus) {
				return fmt.Errorf("%w: assignment %s is not deposited", ErrInvalidTransition, id)
			}
			return fmt.Errorf("assignment %s: %w", id, err)
		}
	}
	return nil
}

func (sm *StateMachine) Get(ctx context.Context, id uuid.UUID) (*CollectorAssignment, error) {
	return sm.store.GetAssignmentByID(ctx, id)
}

// List serves the assignment listing API. Collectors only see their own.
func (sm *StateMachine) List(ctx context.Context, actor auth.Actor, f Filter) ([]CollectorAssignment, error) {
	if actor.Is(auth.RoleCollector) {
		self := actor.UserID
		f.CollectorID = &self
	}
	tenant := actor.TenantID
	f.TenantID = &tenant
	for _, s := range f.Statuses {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
		}
	}
	return sm.store.ListAssignments(ctx, f)
}

// transitionOwned runs the gatekeeper checks in memory, then the store CAS.
func (sm *StateMachine) transitionOwned(ctx context.Context, actor auth.Actor, id uuid.UUID, t Transition) (*CollectorAssignment, error) {
	a, err := sm.store.GetAssignmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	if actor.Is(auth.RoleCollector) && actor.UserID != a.CollectorID {
		return nil, fmt.Errorf("%w: assignment belongs to another collector", auth.ErrForbidden)
	}
	if !actor.Is(auth.RoleCollector, auth.RoleSystem) {
		return nil, fmt.Errorf("%w: %s cannot report visits", auth.ErrForbidden, actor.Role)
	}
	// Fail fast in memory; the store repeats the status check atomically.
	if a.Status != t.From || !CanTransition(t.From, t.To) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, t.To)
	}
	next := *a
	if err := Apply(&next, t); err != nil {
		return nil, err
	}
	if err := sm.store.TransitionAssignment(ctx, id, t); err != nil {
		return nil, fmt.Errorf("transition failed: %w", err)
	}
	return &next, nil
}

// record appends an audit event; a failure is logged, never returned.
func (sm *StateMachine) record(ctx context.Context, actor auth.Actor, action string, a *CollectorAssignment, meta map[string]any) {
	if sm.audit == nil {
		return
	}
	ev := audit.NewEvent(actor.UserID, a.TenantID, action, a.ID, meta, sm.clock())
	if err := sm.audit.AppendAuditEvent(ctx, ev); err != nil {
		log.Printf("[WARN] Assignment %s %s, but audit append failed: %v", a.ID, action, err)
	}
}
