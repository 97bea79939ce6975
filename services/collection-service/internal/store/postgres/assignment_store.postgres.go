// services/collection-service/internal/store/postgres/assignment_store.postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const activeAssignmentConstraint = "collector_assignments_active_invoice_idx"

const assignmentColumns = `id, tenant_id, invoice_id, collector_id, workflow_status,
	visit_notes, visit_photo_url, failure_reason, visited_at,
	deposit_id, deposit_proof_url, deposit_submitted_at,
	confirmed_at, confirmed_by, created_at`

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.CollectorAssignment) error {
	query := `
		INSERT INTO collector_assignments (id, tenant_id, invoice_id, collector_id, workflow_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.conn(ctx).ExecContext(ctx, query, a.ID, a.TenantID, a.InvoiceID, a.CollectorID, a.Status, a.CreatedAt)
	if err != nil {
		// the partial unique index allows one active assignment per invoice
		if uniqueViolationOn(err, activeAssignmentConstraint) {
			return assignment.ErrActiveAssignmentExists
		}
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

func scanAssignment(row interface{ Scan(...any) error }) (*assignment.CollectorAssignment, error) {
	var a assignment.CollectorAssignment
	var status string
	var notes, photo, reason, proofURL sql.NullString
	var visitedAt, submittedAt, confirmedAt sql.NullTime
	var depositID, confirmedBy uuid.NullUUID
	if err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.InvoiceID,
		&a.CollectorID,
		&status,
		&notes,
		&photo,
		&reason,
		&visitedAt,
		&depositID,
		&proofURL,
		&submittedAt,
		&confirmedAt,
		&confirmedBy,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = assignment.WorkflowStatus(status)
	a.VisitNotes = stringPtr(notes)
	a.VisitPhotoURL = stringPtr(photo)
	a.FailureReason = stringPtr(reason)
	a.VisitedAt = timePtr(visitedAt)
	a.DepositID = uuidPtr(depositID)
	a.DepositProofURL = stringPtr(proofURL)
	a.DepositSubmittedAt = timePtr(submittedAt)
	a.ConfirmedAt = timePtr(confirmedAt)
	a.ConfirmedBy = uuidPtr(confirmedBy)
	return &a, nil
}

func (s *Store) GetAssignmentByID(ctx context.Context, id uuid.UUID) (*assignment.CollectorAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM collector_assignments WHERE id = $1`
	a, err := scanAssignment(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assignment.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	return a, nil
}

func (s *Store) ListAssignments(ctx context.Context, f assignment.Filter) ([]assignment.CollectorAssignment, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.TenantID != nil {
		add("tenant_id = $%d", *f.TenantID)
	}
	if f.CollectorID != nil {
		add("collector_id = $%d", *f.CollectorID)
	}
	if f.DepositID != nil {
		add("deposit_id = $%d", *f.DepositID)
	}
	if len(f.Statuses) > 0 {
		statuses := make(pq.StringArray, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		add("workflow_status = ANY($%d::text[])", statuses)
	}
	if len(f.InvoiceIDs) > 0 {
		add("invoice_id = ANY($%d::uuid[])", uuidArray(f.InvoiceIDs))
	}

	query := `SELECT ` + assignmentColumns + ` FROM collector_assignments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var out []assignment.CollectorAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// TransitionAssignment locks the row, validates the patch with assignment.Apply
// and writes it back guarded by the expected status.
func (s *Store) TransitionAssignment(ctx context.Context, id uuid.UUID, t assignment.Transition) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		query := `SELECT ` + assignmentColumns + ` FROM collector_assignments WHERE id = $1 FOR UPDATE`
		a, err := scanAssignment(s.conn(ctx).QueryRowContext(ctx, query, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return assignment.ErrAssignmentNotFound
			}
			return fmt.Errorf("failed to lock assignment: %w", err)
		}
		if err := assignment.Apply(a, t); err != nil {
			return err
		}

		update := `
			UPDATE collector_assignments
			SET workflow_status = $3,
			    visit_notes = $4, visit_photo_url = $5, failure_reason = $6, visited_at = $7,
			    deposit_id = $8, deposit_proof_url = $9, deposit_submitted_at = $10,
			    confirmed_at = $11, confirmed_by = $12
			WHERE id = $1 AND workflow_status = $2`
		res, err := s.conn(ctx).ExecContext(ctx, update,
			id,
			t.From,
			a.Status,
			nullString(a.VisitNotes),
			nullString(a.VisitPhotoURL),
			nullString(a.FailureReason),
			nullTime(a.VisitedAt),
			nullUUID(a.DepositID),
			nullString(a.DepositProofURL),
			nullTime(a.DepositSubmittedAt),
			nullTime(a.ConfirmedAt),
			nullUUID(a.ConfirmedBy),
		)
		if err != nil {
			return fmt.Errorf("failed to update assignment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return assignment.ErrStaleStatus
		}
		return nil
	})
}
