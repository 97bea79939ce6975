// services/collection-service/internal/store/memory/collection.go
package memory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/google/uuid"
)

// --- payments ---

func (s *Store) UnconfirmedAmount(ctx context.Context, invoiceID uuid.UUID, collectorID *uuid.UUID) (int64, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()
	var sum int64
	for _, p := range s.payments {
		if p.InvoiceID != invoiceID || p.VoidedAt != nil {
			continue
		}
		if p.DepositID == nil {
			if collectorID != nil && p.CollectorID != nil && *p.CollectorID == *collectorID {
				continue
			}
		} else if d, ok := s.deposits[*p.DepositID]; ok && d.Confirmed {
			continue
		}
		sum += p.Amount
	}
	return sum, nil
}

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	s.payments[p.ID] = *p
	return nil
}

func (s *Store) GetPaymentsByIDs(ctx context.Context, ids []uuid.UUID) ([]payment.Payment, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]payment.Payment, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.payments[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) AttachToDeposit(ctx context.Context, depositID uuid.UUID, paymentIDs []uuid.UUID) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if err := s.checkOpenPayments(paymentIDs); err != nil {
		return err
	}
	for _, id := range paymentIDs {
		p := s.payments[id]
		dep := depositID
		p.DepositID = &dep
		s.payments[id] = p
	}
	return nil
}

func (s *Store) VoidPayments(ctx context.Context, paymentIDs []uuid.UUID, reason string) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if err := s.checkOpenPayments(paymentIDs); err != nil {
		return err
	}
	now := s.clock().UTC()
	for _, id := range paymentIDs {
		p := s.payments[id]
		at := now
		p.VoidedAt = &at
		s.payments[id] = p
		s.voidReasons[id] = reason
	}
	return nil
}

// checkOpenPayments is the deposit_id IS NULL AND voided_at IS NULL guard.
func (s *Store) checkOpenPayments(ids []uuid.UUID) error {
	for _, id := range ids {
		p, ok := s.payments[id]
		if !ok {
			return payment.ErrPaymentNotFound
		}
		if p.DepositID != nil || p.VoidedAt != nil {
			return payment.ErrPaymentAlreadyDeposited
		}
	}
	return nil
}

// --- assignments ---

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.CollectorAssignment) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	for _, row := range s.assignments {
		if row.InvoiceID == a.InvoiceID && row.Status.IsActive() {
			return assignment.ErrActiveAssignmentExists
		}
	}
	s.assignments[a.ID] = *a
	return nil
}

func (s *Store) GetAssignmentByID(ctx context.Context, id uuid.UUID) (*assignment.CollectorAssignment, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, assignment.ErrAssignmentNotFound
	}
	return &a, nil
}

func (s *Store) ListAssignments(ctx context.Context, f assignment.Filter) ([]assignment.CollectorAssignment, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result []assignment.CollectorAssignment
	for _, a := range s.assignments {
		if (f.TenantID == nil || a.TenantID == *f.TenantID) &&
			(f.CollectorID == nil || a.CollectorID == *f.CollectorID) &&
			(f.DepositID == nil || (a.DepositID != nil && *a.DepositID == *f.DepositID)) &&
			(len(f.Statuses) == 0 || hasStatus(f.Statuses, a.Status)) &&
			(len(f.InvoiceIDs) == 0 || hasID(f.InvoiceIDs, a.InvoiceID)) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return bytes.Compare(result[i].ID[:], result[j].ID[:]) < 0
	})

	// Apply pagination
	start := f.Offset
	if start > len(result) {
		return nil, nil
	}
	end := len(result)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return result[start:end], nil
}

func (s *Store) TransitionAssignment(ctx context.Context, id uuid.UUID, t assignment.Transition) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if err := s.trip("TransitionAssignment"); err != nil {
		return err
	}
	a, ok := s.assignments[id]
	if !ok {
		return assignment.ErrAssignmentNotFound
	}
	if err := assignment.Apply(&a, t); err != nil {
		return err
	}
	s.assignments[id] = a
	return nil
}

// --- deposits ---

func (s *Store) CreateDeposit(ctx context.Context, b *deposit.DepositBatch) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if _, dup := s.depositKeys[b.IdempotencyKey]; dup {
		return deposit.ErrDuplicateDeposit
	}
	row := *b
	row.Proof = nil
	s.deposits[b.ID] = row
	s.depositKeys[b.IdempotencyKey] = b.ID
	return nil
}

func (s *Store) GetDepositByID(ctx context.Context, id uuid.UUID) (*deposit.DepositBatch, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	b, ok := s.deposits[id]
	if !ok {
		return nil, deposit.ErrDepositNotFound
	}
	return &b, nil
}

func (s *Store) GetDepositByIdempotencyKey(ctx context.Context, key string) (*deposit.DepositBatch, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	id, ok := s.depositKeys[key]
	if !ok {
		return nil, deposit.ErrDepositNotFound
	}
	b := s.deposits[id]
	return &b, nil
}

func (s *Store) MarkDepositConfirmed(ctx context.Context, id uuid.UUID, at time.Time, by uuid.UUID) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	b, ok := s.deposits[id]
	if !ok {
		return deposit.ErrDepositNotFound
	}
	if b.Confirmed {
		return deposit.ErrAlreadyConfirmed
	}
	at = at.UTC()
	b.Confirmed = true
	b.ConfirmedAt = &at
	b.ConfirmedBy = &by
	s.deposits[id] = b
	return nil
}

func (s *Store) ListUnconfirmedDeposits(ctx context.Context, submittedBefore time.Time, limit int) ([]deposit.DepositBatch, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []deposit.DepositBatch
	for _, b := range s.deposits {
		if !b.Confirmed && b.SubmittedAt.Before(submittedBefore) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListConfirmedDeposits(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]deposit.DepositBatch, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []deposit.DepositBatch
	for _, b := range s.deposits {
		if b.TenantID != tenantID || !b.Confirmed || b.ConfirmedAt == nil {
			continue
		}
		if !b.ConfirmedAt.Before(from) && b.ConfirmedAt.Before(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConfirmedAt.Before(*out[j].ConfirmedAt) })
	return out, nil
}

// --- audit ---

func (s *Store) AppendAuditEvent(ctx context.Context, e *audit.Event) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if err := s.trip("AppendAuditEvent"); err != nil {
		return err
	}
	s.events = append(s.events, *e)
	return nil
}

// AuditEvents returns the committed audit trail.
func (s *Store) AuditEvents() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Event(nil), s.events...)
}

func hasStatus(list []assignment.WorkflowStatus, st assignment.WorkflowStatus) bool {
	for _, v := range list {
		if v == st {
			return true
		}
	}
	return false
}

func hasID(list []uuid.UUID, id uuid.UUID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
