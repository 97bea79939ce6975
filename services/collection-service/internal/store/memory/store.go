// services/collection-service/internal/store/memory/store.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/google/uuid"
)

// Store keeps every collection-service table in memory. It backs local runs
// and tests.
//
// Transactions are serialized: RunInTx holds the store lock for the whole
// callback, snapshots every table first and restores the snapshot if the
// callback fails. Calls outside a transaction autocommit.
type Store struct {
	mu    sync.Mutex
	clock func() time.Time

	tables
	faults map[string]*fault
}

type tables struct {
	clients     map[uuid.UUID]pricing.Client
	packages    map[uuid.UUID]pricing.ServicePackage
	invoices    map[uuid.UUID]invoice.Invoice
	payments    map[uuid.UUID]payment.Payment
	voidReasons map[uuid.UUID]string
	assignments map[uuid.UUID]assignment.CollectorAssignment
	deposits    map[uuid.UUID]deposit.DepositBatch
	depositKeys map[string]uuid.UUID
	events      []audit.Event
}

type fault struct {
	nth   int
	calls int
	err   error
}

type txKey struct{}

func NewStore() *Store {
	return &Store{
		clock: time.Now,
		tables: tables{
			clients:     make(map[uuid.UUID]pricing.Client),
			packages:    make(map[uuid.UUID]pricing.ServicePackage),
			invoices:    make(map[uuid.UUID]invoice.Invoice),
			payments:    make(map[uuid.UUID]payment.Payment),
			voidReasons: make(map[uuid.UUID]string),
			assignments: make(map[uuid.UUID]assignment.CollectorAssignment),
			deposits:    make(map[uuid.UUID]deposit.DepositBatch),
			depositKeys: make(map[string]uuid.UUID),
		},
		faults: make(map[string]*fault),
	}
}

func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

// InjectFault makes the nth call (1-based) of op fail with err. op is a
// method name such as "ApplyPayment".
func (s *Store) InjectFault(op string, nth int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{nth: nth, err: err}
}

// RunInTx runs fn atomically. A nested call joins the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.tables.clone()
	committed := false
	defer func() {
		if !committed {
			s.tables = saved
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	// a deadline that expires during the callback aborts the commit
	if err := ctx.Err(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock enters the store for one operation. Inside a transaction the lock is
// already held by RunInTx.
func (s *Store) lock(ctx context.Context) (func(), error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if s.inTx(ctx) {
		return func() {}, nil
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

// trip counts a call of op and returns the injected error on the nth call.
// Callers hold the lock.
func (s *Store) trip(op string) error {
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	f.calls++
	if f.calls == f.nth {
		return f.err
	}
	return nil
}

func (t tables) clone() tables {
	out := tables{
		clients:     make(map[uuid.UUID]pricing.Client, len(t.clients)),
		packages:    make(map[uuid.UUID]pricing.ServicePackage, len(t.packages)),
		invoices:    make(map[uuid.UUID]invoice.Invoice, len(t.invoices)),
		payments:    make(map[uuid.UUID]payment.Payment, len(t.payments)),
		voidReasons: make(map[uuid.UUID]string, len(t.voidReasons)),
		assignments: make(map[uuid.UUID]assignment.CollectorAssignment, len(t.assignments)),
		deposits:    make(map[uuid.UUID]deposit.DepositBatch, len(t.deposits)),
		depositKeys: make(map[string]uuid.UUID, len(t.depositKeys)),
		events:      append([]audit.Event(nil), t.events...),
	}
	// Rows are values; fields are replaced on write, never mutated in place.
	for k, v := range t.clients {
		out.clients[k] = v
	}
	for k, v := range t.packages {
		out.packages[k] = v
	}
	for k, v := range t.invoices {
		out.invoices[k] = v
	}
	for k, v := range t.payments {
		out.payments[k] = v
	}
	for k, v := range t.voidReasons {
		out.voidReasons[k] = v
	}
	for k, v := range t.assignments {
		out.assignments[k] = v
	}
	for k, v := range t.deposits {
		out.deposits[k] = v
	}
	for k, v := range t.depositKeys {
		out.depositKeys[k] = v
	}
	return out
}
