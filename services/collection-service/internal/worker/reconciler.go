// services/collection-service/internal/worker/reconciler.go
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/collection"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

/*
A deposit submit can time out after the database committed. The collector
sees an error, but the money is already recorded, and the ledger stays
locked under the idempotency key until someone finds out what happened.

Every tick the Reconciler:
  - re-queries every ambiguous submit by key and settles or releases its ledger
  - finds deposits finance has left unconfirmed for too long and reminds them
  - drops empty ledgers of past days
*/

// PendingResolver is the aggregator side of ambiguous submits.
type PendingResolver interface {
	ResolvePending(ctx context.Context) (int, error)
	Pending() int
}

type StaleDepositSource interface {
	ListUnconfirmedDeposits(ctx context.Context, submittedBefore time.Time, limit int) ([]deposit.DepositBatch, error)
}

type StaleNotifier interface {
	RemindStale(ctx context.Context, b deposit.DepositBatch) error
}

type LedgerPruner interface {
	Prune(before string) int
}

type Reconciler struct {
	resolver PendingResolver
	deposits StaleDepositSource
	notifier StaleNotifier // optional
	ledgers  LedgerPruner  // optional

	//settings
	interval    time.Duration
	staleAfter  time.Duration
	batchSize   int // how many stale deposits per tick
	workerCount int // reminder goroutines
	location    *time.Location
	clock       func() time.Time

	mu       sync.Mutex
	reminded map[uuid.UUID]time.Time
}

func NewReconciler(resolver PendingResolver, deposits StaleDepositSource) *Reconciler {
	return &Reconciler{
		resolver:    resolver,
		deposits:    deposits,
		interval:    5 * time.Minute,
		staleAfter:  24 * time.Hour,
		batchSize:   50,
		workerCount: 5,
		location:    time.UTC,
		clock:       time.Now,
		reminded:    make(map[uuid.UUID]time.Time),
	}
}

func (r *Reconciler) WithNotifier(n StaleNotifier) *Reconciler {
	r.notifier = n
	return r
}

func (r *Reconciler) WithLedgers(l LedgerPruner, loc *time.Location) *Reconciler {
	r.ledgers = l
	if loc != nil {
		r.location = loc
	}
	return r
}

func (r *Reconciler) WithSchedule(interval, staleAfter time.Duration) *Reconciler {
	if interval > 0 {
		r.interval = interval
	}
	if staleAfter > 0 {
		r.staleAfter = staleAfter
	}
	return r
}

func (r *Reconciler) WithClock(clock func() time.Time) *Reconciler {
	r.clock = clock
	return r
}

// Start runs the worker loop. blocking call.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	log.Printf("[Reconciler] Worker started. Polling every %s.", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("[Reconciler] Context cancelled, stopping.")
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				log.Printf("[Reconciler] Cycle finished with errors: %v", err)
			}
		}
	}
}

// RunOnce runs one reconciliation cycle. The ambiguous-submit pass and the
// stale-deposit pass are independent and run concurrently.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.resolvePending(ctx) })
	g.Go(func() error { return r.remindStale(ctx) })
	err := g.Wait()

	if r.ledgers != nil {
		today := collection.DayOf(r.clock(), r.location)
		if n := r.ledgers.Prune(today); n > 0 {
			log.Printf("[Reconciler] Dropped %d empty ledgers before %s", n, today)
		}
	}
	return err
}

func (r *Reconciler) resolvePending(ctx context.Context) error {
	if r.resolver.Pending() == 0 {
		return nil
	}
	n, err := r.resolver.ResolvePending(ctx)
	if n > 0 {
		log.Printf("[Reconciler] Resolved %d ambiguous deposit submissions", n)
	}
	if err != nil {
		return fmt.Errorf("resolve pending: %w", err)
	}
	return nil
}

func (r *Reconciler) remindStale(ctx context.Context) error {
	if r.notifier == nil {
		return nil
	}
	now := r.clock()
	stale, err := r.deposits.ListUnconfirmedDeposits(ctx, now.Add(-r.staleAfter), r.batchSize)
	if err != nil {
		return fmt.Errorf("list stale deposits: %w", err)
	}

	due := stale[:0]
	r.mu.Lock()
	for id, last := range r.reminded {
		if now.Sub(last) > 2*r.staleAfter {
			delete(r.reminded, id)
		}
	}
	for _, b := range stale {
		// remind once per staleAfter window
		if last, ok := r.reminded[b.ID]; ok && now.Sub(last) < r.staleAfter {
			continue
		}
		due = append(due, b)
	}
	r.mu.Unlock()
	if len(due) == 0 {
		return nil
	}
	log.Printf("[Reconciler] %d deposits unconfirmed for more than %s", len(due), r.staleAfter)

	// Worker Pool Setup
	jobs := make(chan deposit.DepositBatch, len(due))
	var wg sync.WaitGroup
	for w := 0; w < r.workerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for b := range jobs {
				if err := r.notifier.RemindStale(ctx, b); err != nil {
					log.Printf("[Reconciler] [WARN] Worker %d failed to remind about deposit %s: %v", id, b.ID, err)
					continue
				}
				r.mu.Lock()
				r.reminded[b.ID] = now
				r.mu.Unlock()
			}
		}(w)
	}
	for _, b := range due {
		jobs <- b
	}
	close(jobs)
	wg.Wait()
	return nil
}
