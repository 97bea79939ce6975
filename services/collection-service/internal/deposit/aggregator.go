// services/collection-service/internal/deposit/aggregator.go
package deposit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/collection"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/google/uuid"
)

// ErrStaleBatch means the ledger changed between BuildDeposit and Submit.
var ErrStaleBatch = errors.New("ledger changed since the deposit was built, rebuild it")

const (
	defaultSubmitTimeout = 30 * time.Second
	submittedRetention   = 24 * time.Hour
)

type submittedEntry struct {
	depositID uuid.UUID
	at        time.Time
}

// pendingSubmission is a submit whose outcome is unknown. Its ledger stays
// locked until the idempotency key is resolved.
type pendingSubmission struct {
	batch  *DepositBatch
	ledger *collection.Ledger
	since  time.Time
}

// Aggregator turns a collector ledger into a deposit and submits it once.
//
// Every submit is a pending -> committed | rolled-back unit: the ledger is
// locked under the idempotency key, the database work runs in one
// transaction, and only a committed transaction settles the ledger.
type Aggregator struct {
	deposits    DepositStore
	payments    PaymentLinker
	assignments AssignmentApplier
	proofs      ProofStore
	tx          TxManager
	audit       AuditLog
	notifier    SubmitNotifier

	policy  AttachmentPolicy
	timeout time.Duration
	clock   func() time.Time

	// sf dedupes concurrent status re-queries for the same key.
	sf singleflight.Group

	mu        sync.Mutex
	inFlight  map[string]struct{}
	submitted map[string]submittedEntry
	ambiguous map[string]*pendingSubmission
}

func NewAggregator(
	deposits DepositStore,
	payments PaymentLinker,
	assignments AssignmentApplier,
	proofs ProofStore,
	tx TxManager,
	auditLog AuditLog,
) *Aggregator {
	return &Aggregator{
		deposits:    deposits,
		payments:    payments,
		assignments: assignments,
		proofs:      proofs,
		tx:          tx,
		audit:       auditLog,
		policy:      DefaultAttachmentPolicy(),
		timeout:     defaultSubmitTimeout,
		clock:       time.Now,
		inFlight:    make(map[string]struct{}),
		submitted:   make(map[string]submittedEntry),
		ambiguous:   make(map[string]*pendingSubmission),
	}
}

func (a *Aggregator) WithPolicy(p AttachmentPolicy) *Aggregator {
	a.policy = p
	return a
}

func (a *Aggregator) WithTimeout(d time.Duration) *Aggregator {
	if d > 0 {
		a.timeout = d
	}
	return a
}

func (a *Aggregator) WithNotifier(n SubmitNotifier) *Aggregator {
	a.notifier = n
	return a
}

func (a *Aggregator) WithClock(clock func() time.Time) *Aggregator {
	a.clock = clock
	return a
}

// BuildDeposit snapshots the ledger into a batch. It does no I/O.
func (a *Aggregator) BuildDeposit(ledger *collection.Ledger, proof *Attachment) (*DepositBatch, error) {
	snap := ledger.Snapshot()
	if snap.Total == 0 {
		return nil, ErrEmptyDeposit
	}
	if proof == nil {
		return nil, ErrMissingProof
	}
	if err := a.policy.Validate(proof); err != nil {
		return nil, err
	}

	b := &DepositBatch{
		ID:          uuid.New(),
		TenantID:    snap.TenantID,
		CollectorID: snap.CollectorID,
		Day:         snap.Day,
		Proof:       proof,
	}
	seenInvoice := make(map[uuid.UUID]struct{}, len(snap.Entries))
	for _, e := range snap.Entries {
		if b.Currency == "" {
			b.Currency = e.Payment.Currency
		} else if e.Payment.Currency != b.Currency {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedCurrency, b.Currency, e.Payment.Currency)
		}
		b.Amount += e.Payment.Amount
		b.ClientIDs = append(b.ClientIDs, e.ClientID)
		b.PaymentIDs = append(b.PaymentIDs, e.Payment.ID)
		if _, ok := seenInvoice[e.Payment.InvoiceID]; !ok {
			seenInvoice[e.Payment.InvoiceID] = struct{}{}
			b.InvoiceIDs = append(b.InvoiceIDs, e.Payment.InvoiceID)
		}
	}
	for _, p := range snap.Superseded {
		b.VoidedPaymentIDs = append(b.VoidedPaymentIDs, p.ID)
	}

	// The batch must carry exactly what the ledger says was collected.
	if b.Amount != snap.Total {
		log.Printf("[CRITICAL] [Deposit] ledger total %d but payments sum to %d (collector %s)", snap.Total, b.Amount, snap.CollectorID)
		return nil, fmt.Errorf("%w: ledger %d, payments %d", ErrAmountMismatch, snap.Total, b.Amount)
	}
	b.IdempotencyKey = IdempotencyKey(b.PaymentIDs)
	return b, nil
}

// Submit creates the deposit for batch. It is single-shot per idempotency key:
// a concurrent call fails with ErrSubmissionInFlight and a call after success
// with ErrAlreadySubmitted. On any failure the ledger keeps its entries.
func (a *Aggregator) Submit(ctx context.Context, batch *DepositBatch, ledger *collection.Ledger) (*Confirmation, error) {
	if batch == nil || batch.IdempotencyKey == "" {
		return nil, ErrEmptyDeposit
	}
	if batch.Proof == nil {
		return nil, ErrMissingProof
	}
	key := batch.IdempotencyKey

	// 1. Local submission lock
	if err := a.acquire(key); err != nil {
		return nil, err
	}
	defer a.releaseInFlight(key)

	// 2. Ledger goes to pending: no more records until commit or rollback
	if err := ledger.BeginSubmission(key); err != nil {
		return nil, err
	}

	// 3. A previous attempt ended ambiguously. Ask before writing again.
	if a.isAmbiguous(key) {
		existing, err := a.Resolve(ctx, key)
		switch {
		case err == nil:
			return a.commit(ctx, ledger, existing, nil, true), nil
		case !errors.Is(err, ErrDepositNotFound):
			return nil, fmt.Errorf("%w: status re-query failed: %w", ErrTransient, err)
		}
		a.clearAmbiguous(key)
	}

	if current := IdempotencyKey(activePaymentIDs(ledger.Snapshot())); current != key {
		ledger.Release(key)
		return nil, ErrStaleBatch
	}

	submitCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// 4. Proof upload. Nothing is written yet, so a failure simply rolls back.
	url, err := a.proofs.Put(submitCtx, proofKey(batch), *batch.Proof)
	if err != nil {
		ledger.Release(key)
		return nil, fmt.Errorf("%w: failed to store proof: %w", ErrTransient, err)
	}
	now := a.clock().UTC()
	batch.ProofURL = url
	batch.SubmittedAt = now

	// 5. One transaction: batch, payment links, voids, assignments, audit
	var assignmentIDs []uuid.UUID
	err = a.tx.RunInTx(submitCtx, func(txCtx context.Context) error {
		if err := a.deposits.CreateDeposit(txCtx, batch); err != nil {
			return err
		}
		if err := a.payments.AttachToDeposit(txCtx, batch.ID, batch.PaymentIDs); err != nil {
			return fmt.Errorf("failed to attach payments: %w", err)
		}
		if len(batch.VoidedPaymentIDs) > 0 {
			reason := "superseded before deposit " + batch.ID.String()
			if err := a.payments.VoidPayments(txCtx, batch.VoidedPaymentIDs, reason); err != nil {
				return fmt.Errorf("failed to void superseded payments: %w", err)
			}
		}
		ids, err := a.assignments.ApplyDeposit(txCtx, batch.CollectorID, batch.InvoiceIDs, assignment.DepositStamp{
			DepositID:   batch.ID,
			ProofURL:    url,
			SubmittedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to mark assignments deposited: %w", err)
		}
		assignmentIDs = ids

		ev := audit.NewEvent(batch.CollectorID, batch.TenantID, audit.ActionDepositSubmitted, batch.ID, map[string]any{
			"amount":          batch.Amount,
			"currency":        batch.Currency,
			"payments":        len(batch.PaymentIDs),
			"voided":          len(batch.VoidedPaymentIDs),
			"idempotency_key": key,
		}, now)
		return a.audit.AppendAuditEvent(txCtx, ev)
	})

	// 6. Commit or roll back the ledger
	switch {
	case err == nil:
		return a.commit(ctx, ledger, batch, assignmentIDs, false), nil

	case errors.Is(err, ErrDuplicateDeposit):
		// Server-side idempotency: the same payment set was already deposited.
		existing, rerr := a.Resolve(ctx, key)
		if rerr != nil {
			a.markAmbiguous(key, batch, ledger)
			return nil, fmt.Errorf("%w: deposit exists but could not be read: %w", ErrTransient, rerr)
		}
		return a.commit(ctx, ledger, existing, nil, true), nil

	case IsAmbiguous(err):
		a.markAmbiguous(key, batch, ledger)
		return a.settleAmbiguous(ctx, ledger, batch, err)

	default:
		ledger.Release(key)
		if errors.Is(err, payment.ErrPaymentAlreadyDeposited) {
			log.Printf("[CRITICAL] [Deposit] Collector %s tried to deposit payments that already belong to a deposit: %v", batch.CollectorID, err)
		}
		return nil, fmt.Errorf("deposit submission failed: %w", err)
	}
}

// settleAmbiguous asks once, right away, whether an ambiguous submit committed.
// Only an unanswered re-query leaves the ledger locked for the reconciler.
func (a *Aggregator) settleAmbiguous(ctx context.Context, ledger *collection.Ledger, batch *DepositBatch, cause error) (*Confirmation, error) {
	key := batch.IdempotencyKey
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	existing, err := a.Resolve(rctx, key)
	switch {
	case err == nil:
		return a.commit(ctx, ledger, existing, nil, false), nil
	case errors.Is(err, ErrDepositNotFound):
		ledger.Release(key)
		a.clearAmbiguous(key)
		log.Printf("[WARN] [Deposit] Submit %s ended ambiguously but had not committed, ledger released: %v", key, cause)
		return nil, fmt.Errorf("%w: %w", ErrTransient, cause)
	}
	log.Printf("[WARN] [Deposit] Submit %s ended ambiguously, ledger stays locked until resolved: %v (re-query: %v)", key, cause, err)
	return nil, fmt.Errorf("%w: %w", ErrTransient, cause)
}

// Resolve looks a deposit up by idempotency key. Concurrent lookups for the
// same key share one query.
func (a *Aggregator) Resolve(ctx context.Context, key string) (*DepositBatch, error) {
	v, err, _ := a.sf.Do("deposit_key_"+key, func() (interface{}, error) {
		return a.deposits.GetDepositByIdempotencyKey(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	b, ok := v.(*DepositBatch)
	if !ok || b == nil {
		return nil, ErrDepositNotFound
	}
	return b, nil
}

// ResolvePending settles or releases every ambiguous submission whose
// outcome can now be read back. It returns how many were resolved.
func (a *Aggregator) ResolvePending(ctx context.Context) (int, error) {
	a.mu.Lock()
	keys := make([]string, 0, len(a.ambiguous))
	for key := range a.ambiguous {
		keys = append(keys, key)
	}
	cutoff := a.clock().Add(-submittedRetention)
	for key, s := range a.submitted {
		if s.at.Before(cutoff) {
			delete(a.submitted, key)
		}
	}
	a.mu.Unlock()

	resolved := 0
	var errs []error
	for _, key := range keys {
		if err := a.acquire(key); err != nil {
			continue // a Submit is handling it right now
		}
		ok, err := a.resolveOne(ctx, key)
		a.releaseInFlight(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("key %s: %w", key, err))
			continue
		}
		if ok {
			resolved++
		}
	}
	return resolved, errors.Join(errs...)
}

func (a *Aggregator) resolveOne(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	pending, ok := a.ambiguous[key]
	a.mu.Unlock()
	if !ok {
		return false, nil
	}

	existing, err := a.Resolve(ctx, key)
	switch {
	case err == nil:
		a.commit(ctx, pending.ledger, existing, nil, true)
		log.Printf("[Deposit] Ambiguous submit %s (pending since %s) had committed as deposit %s",
			key, pending.since.Format(time.RFC3339), existing.ID)
		return true, nil
	case errors.Is(err, ErrDepositNotFound):
		// The transaction never committed: roll the ledger back.
		pending.ledger.Release(key)
		a.clearAmbiguous(key)
		log.Printf("[Deposit] Ambiguous submit %s of %d %s had not committed, ledger released",
			key, pending.batch.Amount, pending.batch.Currency)
		return true, nil
	default:
		return false, err
	}
}

// Pending returns the number of unresolved ambiguous submissions.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ambiguous)
}

func (a *Aggregator) Get(ctx context.Context, id uuid.UUID) (*DepositBatch, error) {
	return a.deposits.GetDepositByID(ctx, id)
}

// commit settles the ledger against a stored batch and records the key as done.
func (a *Aggregator) commit(ctx context.Context, ledger *collection.Ledger, b *DepositBatch, assignmentIDs []uuid.UUID, replayed bool) *Confirmation {
	settled := make([]uuid.UUID, 0, len(b.PaymentIDs)+len(b.VoidedPaymentIDs))
	settled = append(settled, b.PaymentIDs...)
	settled = append(settled, b.VoidedPaymentIDs...)
	ledger.Settle(b.IdempotencyKey, settled)

	a.mu.Lock()
	a.submitted[b.IdempotencyKey] = submittedEntry{depositID: b.ID, at: a.clock()}
	delete(a.ambiguous, b.IdempotencyKey)
	a.mu.Unlock()

	if !replayed {
		log.Printf("[Deposit] Deposit %s submitted by collector %s: %d %s in %d payments",
			b.ID, b.CollectorID, b.Amount, b.Currency, len(b.PaymentIDs))
		if a.notifier != nil {
			if err := a.notifier.DepositSubmitted(ctx, *b); err != nil {
				log.Printf("[WARN] Deposit %s committed, but notification failed: %v", b.ID, err)
			}
		}
	}
	return &Confirmation{
		DepositID:      b.ID,
		IdempotencyKey: b.IdempotencyKey,
		Amount:         b.Amount,
		AssignmentIDs:  assignmentIDs,
		Replayed:       replayed,
	}
}

func (a *Aggregator) acquire(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, done := a.submitted[key]; done {
		return ErrAlreadySubmitted
	}
	if _, busy := a.inFlight[key]; busy {
		return ErrSubmissionInFlight
	}
	a.inFlight[key] = struct{}{}
	return nil
}

func (a *Aggregator) releaseInFlight(key string) {
	a.mu.Lock()
	delete(a.inFlight, key)
	a.mu.Unlock()
}

func (a *Aggregator) isAmbiguous(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ambiguous[key]
	return ok
}

func (a *Aggregator) markAmbiguous(key string, b *DepositBatch, ledger *collection.Ledger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.ambiguous[key]; !ok {
		a.ambiguous[key] = &pendingSubmission{batch: b, ledger: ledger, since: a.clock()}
	}
}

func (a *Aggregator) clearAmbiguous(key string) {
	a.mu.Lock()
	delete(a.ambiguous, key)
	a.mu.Unlock()
}

func activePaymentIDs(snap collection.Snapshot) []uuid.UUID {
	ids := make([]uuid.UUID, len(snap.Entries))
	for i, e := range snap.Entries {
		ids[i] = e.Payment.ID
	}
	return ids
}

// proofKey is stable per submission so a retried upload overwrites itself.
func proofKey(b *DepositBatch) string {
	return fmt.Sprintf("deposits/%s/%s/%s%s", b.TenantID, b.CollectorID, b.IdempotencyKey, ExtensionFor(b.Proof.ContentType))
}
