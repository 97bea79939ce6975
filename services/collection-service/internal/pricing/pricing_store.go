// services/collection-service/internal/pricing/pricing_store.go
package pricing

import (
	"context"

	"github.com/google/uuid"
)

// CatalogStore is the read-only client/package API this subsystem consumes.
type CatalogStore interface {
	GetClientByID(ctx context.Context, clientID uuid.UUID) (*Client, error)
	ListServicePackages(ctx context.Context, tenantID uuid.UUID) ([]ServicePackage, error)
}

// LoadCatalog snapshots all packages of a tenant.
func LoadCatalog(ctx context.Context, store CatalogStore, tenantID uuid.UUID) (*Catalog, error) {
	pkgs, err := store.ListServicePackages(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return NewCatalog(pkgs), nil
}
