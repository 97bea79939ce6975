// services/collection-service/internal/collection/ledger.go

package collection

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/google/uuid"
)

// DueCalculator prices a client without I/O.
type DueCalculator interface {
	ComputeDue(client pricing.Client) (int64, error)
}

type EntryKind string

const (
	EntryFull    EntryKind = "full"
	EntryPartial EntryKind = "partial"
)

// Entry is the current state of one client in the ledger.
type Entry struct {
	ClientID uuid.UUID
	Kind     EntryKind
	Amount   int64
	Payment  payment.Payment
}

// Snapshot is an immutable copy of the ledger, the input of a deposit.
type Snapshot struct {
	TenantID    uuid.UUID
	CollectorID uuid.UUID
	Day         string
	Entries     []Entry           // one per client, in recording order
	Superseded  []payment.Payment // overwritten payments awaiting void
	Total       int64
}

// Ledger is one collector's working set for one day. It is owned by that
// collector's session; all methods are safe for concurrent use.
type Ledger struct {
	mu          sync.Mutex
	tenantID    uuid.UUID
	collectorID uuid.UUID
	day         string
	pricer      DueCalculator

	paidFull   map[uuid.UUID]int64 // client -> due amount computed when recorded
	partial    map[uuid.UUID]int64 // client -> partial amount
	active     map[uuid.UUID]payment.Payment
	seen       map[uuid.UUID]struct{} // every payment id ever recorded
	payments   []payment.Payment      // recording order
	superseded []payment.Payment

	lockKey string // idempotency key of the submission holding the ledger
}

func NewLedger(tenantID, collectorID uuid.UUID, day string, pricer DueCalculator) *Ledger {
	return &Ledger{
		tenantID:    tenantID,
		collectorID: collectorID,
		day:         day,
		pricer:      pricer,
		paidFull:    make(map[uuid.UUID]int64),
		partial:     make(map[uuid.UUID]int64),
		active:      make(map[uuid.UUID]payment.Payment),
		seen:        make(map[uuid.UUID]struct{}),
	}
}

// DayOf formats the working day of t in loc.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

func (l *Ledger) CollectorID() uuid.UUID { return l.collectorID }
func (l *Ledger) TenantID() uuid.UUID    { return l.tenantID }
func (l *Ledger) Day() string            { return l.day }

// DueFor prices a client with the ledger's calculator.
func (l *Ledger) DueFor(client pricing.Client) (int64, error) {
	return l.pricer.ComputeDue(client)
}

// CheckFull validates a full payment of amount for client without recording it.
func (l *Ledger) CheckFull(client pricing.Client, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkWritable(); err != nil {
		return 0, err
	}
	due, err := l.pricer.ComputeDue(client)
	if err != nil {
		return 0, err
	}
	if amount != due {
		return 0, fmt.Errorf("%w: full payment %d, due %d", ErrAmountMismatch, amount, due)
	}
	return due, nil
}

// CheckPartial validates a partial payment of amount for client without recording it.
func (l *Ledger) CheckPartial(client pricing.Client, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkWritable(); err != nil {
		return err
	}
	due, err := l.pricer.ComputeDue(client)
	if err != nil {
		return err
	}
	if amount <= 0 || amount >= due {
		return fmt.Errorf("%w: partial %d, due %d", ErrNotPartial, amount, due)
	}
	return nil
}

// RecordFullPayment marks client as paid in full, backed by p. A partial
// entry for the same client is replaced, never added to.
func (l *Ledger) RecordFullPayment(client pricing.Client, p payment.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkPayment(client, p); err != nil {
		return err
	}
	due, err := l.pricer.ComputeDue(client)
	if err != nil {
		return err
	}
	if p.Amount != due {
		return fmt.Errorf("%w: full payment %d, due %d", ErrAmountMismatch, p.Amount, due)
	}

	l.supersede(client.ID)
	delete(l.partial, client.ID)
	l.paidFull[client.ID] = due
	l.remember(client.ID, p)
	return nil
}

// RecordPartialPayment sets the partial amount for client. Last write wins:
// an earlier entry for the client, partial or full, is replaced.
func (l *Ledger) RecordPartialPayment(client pricing.Client, amount int64, p payment.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkPayment(client, p); err != nil {
		return err
	}
	if amount != p.Amount {
		return fmt.Errorf("%w: partial %d, payment %d", ErrAmountMismatch, amount, p.Amount)
	}
	due, err := l.pricer.ComputeDue(client)
	if err != nil {
		return err
	}
	if amount <= 0 || amount >= due {
		return fmt.Errorf("%w: partial %d, due %d", ErrNotPartial, amount, due)
	}

	l.supersede(client.ID)
	delete(l.paidFull, client.ID)
	l.partial[client.ID] = amount
	l.remember(client.ID, p)
	return nil
}

// AmountFor is the partial amount if present, the due amount if paid in full, else 0.
func (l *Ledger) AmountFor(clientID uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.amountFor(clientID)
}

// TotalCollected sums AmountFor over every client in the ledger.
func (l *Ledger) TotalCollected() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total()
}

// PaidFullClients returns the fully paid clients, sorted.
func (l *Ledger) PaidFullClients() []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedKeys(l.paidFull)
}

// PartialPayments returns a copy of the partial amounts.
func (l *Ledger) PartialPayments() map[uuid.UUID]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[uuid.UUID]int64, len(l.partial))
	for k, v := range l.partial {
		out[k] = v
	}
	return out
}

// Payments returns every payment recorded so far, superseded ones included.
func (l *Ledger) Payments() []payment.Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]payment.Payment(nil), l.payments...)
}

func (l *Ledger) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active) == 0 && len(l.superseded) == 0
}

// Snapshot copies the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		TenantID:    l.tenantID,
		CollectorID: l.collectorID,
		Day:         l.day,
		Superseded:  append([]payment.Payment(nil), l.superseded...),
		Total:       l.total(),
	}
	for _, p := range l.payments {
		cur, ok := l.active[p.ClientID]
		if !ok || cur.ID != p.ID {
			continue
		}
		e := Entry{ClientID: p.ClientID, Payment: p, Amount: l.amountFor(p.ClientID)}
		if _, full := l.paidFull[p.ClientID]; full {
			e.Kind = EntryFull
		} else {
			e.Kind = EntryPartial
		}
		snap.Entries = append(snap.Entries, e)
	}
	return snap
}

// BeginSubmission locks the ledger for the submission identified by key.
// Re-entering with the same key is allowed (retry after an ambiguous failure).
func (l *Ledger) BeginSubmission(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lockKey != "" && l.lockKey != key {
		return ErrLedgerLocked
	}
	l.lockKey = key
	return nil
}

// Release rolls a failed submission back: the ledger is unlocked, untouched.
func (l *Ledger) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lockKey == key {
		l.lockKey = ""
	}
}

// Settle commits a successful submission: the given payments (active and
// superseded) leave the ledger and the lock is released.
func (l *Ledger) Settle(key string, paymentIDs []uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	settled := make(map[uuid.UUID]struct{}, len(paymentIDs))
	for _, id := range paymentIDs {
		settled[id] = struct{}{}
	}
	for clientID, p := range l.active {
		if _, ok := settled[p.ID]; ok {
			delete(l.active, clientID)
			delete(l.paidFull, clientID)
			delete(l.partial, clientID)
		}
	}
	l.superseded = filterOut(l.superseded, settled)
	l.payments = filterOut(l.payments, settled)
	if l.lockKey == key {
		l.lockKey = ""
	}
}

// LockedBy returns the key of the submission holding the ledger, or "".
func (l *Ledger) LockedBy() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lockKey
}

func (l *Ledger) checkWritable() error {
	if l.lockKey != "" {
		return ErrLedgerLocked
	}
	return nil
}

func (l *Ledger) checkPayment(client pricing.Client, p payment.Payment) error {
	if err := l.checkWritable(); err != nil {
		return err
	}
	if p.ClientID != client.ID {
		return fmt.Errorf("%w: payment %s is for client %s, not %s", ErrClientMismatch, p.ID, p.ClientID, client.ID)
	}
	if p.CollectorID != nil && *p.CollectorID != l.collectorID {
		return fmt.Errorf("%w: %s", ErrForeignPayment, *p.CollectorID)
	}
	if _, dup := l.seen[p.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicatePayment, p.ID)
	}
	return nil
}

// supersede moves the client's current backing payment to the void list.
func (l *Ledger) supersede(clientID uuid.UUID) {
	if prev, ok := l.active[clientID]; ok {
		l.superseded = append(l.superseded, prev)
	}
}

func (l *Ledger) remember(clientID uuid.UUID, p payment.Payment) {
	l.active[clientID] = p
	l.seen[p.ID] = struct{}{}
	l.payments = append(l.payments, p)
}

func (l *Ledger) amountFor(clientID uuid.UUID) int64 {
	if amt, ok := l.partial[clientID]; ok {
		return amt
	}
	if due, ok := l.paidFull[clientID]; ok {
		return due
	}
	return 0
}

func (l *Ledger) total() int64 {
	var sum int64
	for clientID := range l.active {
		sum += l.amountFor(clientID)
	}
	return sum
}

func sortedKeys(m map[uuid.UUID]int64) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	return keys
}

func filterOut(ps []payment.Payment, drop map[uuid.UUID]struct{}) []payment.Payment {
	kept := ps[:0]
	for _, p := range ps {
		if _, ok := drop[p.ID]; !ok {
			kept = append(kept, p)
		}
	}
	return kept
}
