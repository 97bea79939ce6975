// services/collection-service/internal/collection/registry.go

package collection

import (
	"context"
	"fmt"
	"sync"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/google/uuid"
)

type sessionKey struct {
	collectorID uuid.UUID
	day         string
}

// Registry owns the open ledgers, one per (collector, day). It is created in
// main and injected; there is no package-level ledger state.
type Registry struct {
	mu      sync.Mutex
	catalog pricing.CatalogStore
	ledgers map[sessionKey]*Ledger
}

func NewRegistry(catalog pricing.CatalogStore) *Registry {
	return &Registry{
		catalog: catalog,
		ledgers: make(map[sessionKey]*Ledger),
	}
}

// Open returns the collector's ledger for day, creating it (and loading the
// tenant's package catalog) on first use.
func (r *Registry) Open(ctx context.Context, tenantID, collectorID uuid.UUID, day string) (*Ledger, error) {
	key := sessionKey{collectorID: collectorID, day: day}

	r.mu.Lock()
	if l, ok := r.ledgers[key]; ok {
		r.mu.Unlock()
		if l.TenantID() != tenantID {
			return nil, fmt.Errorf("collector %s already has a ledger for another tenant", collectorID)
		}
		return l, nil
	}
	r.mu.Unlock()

	// Catalog I/O happens outside the registry lock.
	catalog, err := pricing.LoadCatalog(ctx, r.catalog, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load package catalog: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.ledgers[key]; ok {
		// lost the race; keep the first ledger
		return l, nil
	}
	l := NewLedger(tenantID, collectorID, day, pricing.NewCalculator(catalog))
	r.ledgers[key] = l
	return l, nil
}

// Get returns an already open ledger.
func (r *Registry) Get(collectorID uuid.UUID, day string) (*Ledger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[sessionKey{collectorID: collectorID, day: day}]
	return l, ok
}

// Prune drops empty, unlocked ledgers of days before the given day.
// Days compare lexically (YYYY-MM-DD).
func (r *Registry) Prune(before string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, l := range r.ledgers {
		if key.day < before && l.IsEmpty() && l.LockedBy() == "" {
			delete(r.ledgers, key)
			n++
		}
	}
	return n
}
