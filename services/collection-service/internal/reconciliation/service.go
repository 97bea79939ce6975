// services/collection-service/internal/reconciliation/service.go
package reconciliation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/google/uuid"
)

// InvoiceSettlement is what one invoice received from a deposit.
type InvoiceSettlement struct {
	InvoiceID  uuid.UUID
	Applied    int64
	PaidAmount int64
	Total      int64
	Status     invoice.InvoiceStatus
}

// Settlement is the outcome of a confirmed deposit.
type Settlement struct {
	DepositID     uuid.UUID
	TenantID      uuid.UUID
	CollectorID   uuid.UUID
	Amount        int64
	Currency      string
	ConfirmedAt   time.Time
	ConfirmedBy   uuid.UUID
	Invoices      []InvoiceSettlement
	AssignmentIDs []uuid.UUID
}

// PaidInvoices returns the invoices this settlement closed.
func (s Settlement) PaidInvoices() []uuid.UUID {
	var ids []uuid.UUID
	for _, inv := range s.Invoices {
		if inv.Status == invoice.InvoicePaid {
			ids = append(ids, inv.InvoiceID)
		}
	}
	return ids
}

// Service is the finance side of the collection loop.
type Service struct {
	deposits  DepositReader
	payments  PaymentReader
	invoices  InvoiceApplier
	lister    AssignmentLister
	confirmer AssignmentConfirmer
	tx        TxManager
	audit     AuditLog
	notifier  ConfirmNotifier
	clock     func() time.Time
}

func NewService(
	deposits DepositReader,
	payments PaymentReader,
	invoices InvoiceApplier,
	lister AssignmentLister,
	confirmer AssignmentConfirmer,
	tx TxManager,
	auditLog AuditLog,
) *Service {
	return &Service{
		deposits:  deposits,
		payments:  payments,
		invoices:  invoices,
		lister:    lister,
		confirmer: confirmer,
		tx:        tx,
		audit:     auditLog,
		clock:     time.Now,
	}
}

func (s *Service) WithNotifier(n ConfirmNotifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Confirm applies a submitted deposit to its invoices and assignments.
// Everything happens in one transaction: either every invoice, every
// assignment and the batch flag change, or nothing does.
func (s *Service) Confirm(ctx context.Context, actor auth.Actor, depositID uuid.UUID) (*Settlement, error) {
	if !actor.Is(auth.RoleFinance) {
		return nil, fmt.Errorf("%w: only finance confirms deposits", auth.ErrForbidden)
	}

	var settlement *Settlement
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		out, err := s.confirmInTx(ctx, actor, depositID)
		if err != nil {
			return err
		}
		settlement = out
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOverpayment) || errors.Is(err, ErrBatchIntegrity) {
			log.Printf("[CRITICAL] [Reconciliation] Deposit %s rejected, nothing applied: %v", depositID, err)
		}
		return nil, err
	}

	log.Printf("[Reconciliation] Deposit %s confirmed by %s: %d %s over %d invoices",
		depositID, actor.UserID, settlement.Amount, settlement.Currency, len(settlement.Invoices))
	if s.notifier != nil {
		if err := s.notifier.DepositConfirmed(ctx, *settlement); err != nil {
			log.Printf("[WARN] Deposit %s confirmed, but notification failed: %v", depositID, err)
		}
	}
	return settlement, nil
}

func (s *Service) confirmInTx(ctx context.Context, actor auth.Actor, depositID uuid.UUID) (*Settlement, error) {
	// 1. The GateKeeper: fail fast in memory, then claim the batch with a CAS.
	// A concurrent confirm blocks on the same row and then sees confirmed = true.
	batch, err := s.deposits.GetDepositByID(ctx, depositID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deposit: %w", err)
	}
	if batch.Confirmed {
		return nil, deposit.ErrAlreadyConfirmed
	}
	if batch.TenantID != actor.TenantID {
		return nil, deposit.ErrDepositNotFound
	}
	now := s.clock().UTC()
	if err := s.deposits.MarkDepositConfirmed(ctx, batch.ID, now, actor.UserID); err != nil {
		return nil, err
	}

	// 2. The batch must be backed by exactly its payments.
	perInvoice, err := s.verifyPayments(ctx, batch)
	if err != nil {
		return nil, err
	}

	// 3. Apply per invoice, in a stable order.
	settlement := &Settlement{
		DepositID:   batch.ID,
		TenantID:    batch.TenantID,
		CollectorID: batch.CollectorID,
		Amount:      batch.Amount,
		Currency:    batch.Currency,
		ConfirmedAt: now,
		ConfirmedBy: actor.UserID,
	}
	for _, invoiceID := range sortedInvoiceIDs(perInvoice) {
		applied, err := s.applyToInvoice(ctx, invoiceID, perInvoice[invoiceID])
		if err != nil {
			return nil, err
		}
		settlement.Invoices = append(settlement.Invoices, *applied)
	}

	// 4. deposited -> confirmed for every assignment the batch carried
	assignments, err := s.lister.ListAssignments(ctx, assignment.Filter{DepositID: &batch.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list deposit assignments: %w", err)
	}
	for _, a := range assignments {
		settlement.AssignmentIDs = append(settlement.AssignmentIDs, a.ID)
	}
	if err := s.confirmer.ConfirmDeposited(ctx, actor, settlement.AssignmentIDs, now); err != nil {
		return nil, err
	}

	// 5. Audit is part of the settlement, so it shares the transaction.
	ev := audit.NewEvent(actor.UserID, batch.TenantID, audit.ActionDepositConfirmed, batch.ID, map[string]any{
		"amount":      batch.Amount,
		"currency":    batch.Currency,
		"invoices":    len(settlement.Invoices),
		"assignments": len(settlement.AssignmentIDs),
		"collector":   batch.CollectorID.String(),
	}, now)
	if err := s.audit.AppendAuditEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to append audit event: %w", err)
	}
	return settlement, nil
}

// verifyPayments checks the stored payments against the batch and sums them per invoice.
func (s *Service) verifyPayments(ctx context.Context, batch *deposit.DepositBatch) (map[uuid.UUID]int64, error) {
	payments, err := s.payments.GetPaymentsByIDs(ctx, batch.PaymentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	if len(payments) != len(batch.PaymentIDs) {
		return nil, fmt.Errorf("%w: %d payments listed, %d found", ErrBatchIntegrity, len(batch.PaymentIDs), len(payments))
	}

	perInvoice := make(map[uuid.UUID]int64)
	var sum int64
	for _, p := range payments {
		if err := checkPayment(batch, p); err != nil {
			return nil, err
		}
		sum += p.Amount
		perInvoice[p.InvoiceID] += p.Amount
	}
	if sum != batch.Amount {
		return nil, fmt.Errorf("%w: batch amount %d, payments sum %d", ErrBatchIntegrity, batch.Amount, sum)
	}
	return perInvoice, nil
}

func checkPayment(batch *deposit.DepositBatch, p payment.Payment) error {
	switch {
	case p.DepositID == nil || *p.DepositID != batch.ID:
		return fmt.Errorf("%w: payment %s is not linked to deposit %s", ErrBatchIntegrity, p.ID, batch.ID)
	case p.VoidedAt != nil:
		return fmt.Errorf("%w: payment %s is void", ErrBatchIntegrity, p.ID)
	case p.Amount <= 0:
		return fmt.Errorf("%w: payment %s has amount %d", ErrBatchIntegrity, p.ID, p.Amount)
	}
	return nil
}

func (s *Service) applyToInvoice(ctx context.Context, invoiceID uuid.UUID, amount int64) (*InvoiceSettlement, error) {
	inv, err := s.invoices.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", invoiceID, err)
	}
	if inv.PaidAmount+amount > inv.TotalAmount {
		return nil, &OverpaymentError{InvoiceID: invoiceID, Total: inv.TotalAmount, Paid: inv.PaidAmount, Applying: amount}
	}
	updated, err := s.invoices.ApplyPayment(ctx, invoiceID, amount)
	if err != nil {
		// the store guard lost a race with another writer
		if errors.Is(err, invoice.ErrPaidExceedsTotal) {
			return nil, &OverpaymentError{InvoiceID: invoiceID, Total: inv.TotalAmount, Paid: inv.PaidAmount, Applying: amount}
		}
		return nil, fmt.Errorf("failed to apply payments to invoice %s: %w", invoiceID, err)
	}
	return &InvoiceSettlement{
		InvoiceID:  invoiceID,
		Applied:    amount,
		PaidAmount: updated.PaidAmount,
		Total:      updated.TotalAmount,
		Status:     updated.Status,
	}, nil
}

func sortedInvoiceIDs(m map[uuid.UUID]int64) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}
