// services/collection-service/internal/store/memory/billing.go
package memory

import (
	"context"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/google/uuid"
)

// PutServicePackage and PutClient seed reference data owned by upstream billing.
func (s *Store) PutServicePackage(pkg pricing.ServicePackage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[pkg.ID] = pkg
}

func (s *Store) PutClient(c pricing.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

func (s *Store) GetClientByID(ctx context.Context, clientID uuid.UUID) (*pricing.Client, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, pricing.ErrClientNotFound
	}
	return &c, nil
}

func (s *Store) ListServicePackages(ctx context.Context, tenantID uuid.UUID) ([]pricing.ServicePackage, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []pricing.ServicePackage
	for _, pkg := range s.packages {
		if pkg.TenantID == tenantID {
			out = append(out, pkg)
		}
	}
	return out, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = s.clock().UTC()
	}
	s.invoices[inv.InvoiceID] = *inv
	return nil
}

func (s *Store) GetInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, invoice.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (s *Store) ApplyPayment(ctx context.Context, invoiceID uuid.UUID, amount int64) (*invoice.Invoice, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if err := s.trip("ApplyPayment"); err != nil {
		return nil, err
	}
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, invoice.ErrInvoiceNotFound
	}
	if !inv.IsPayable() {
		return nil, invoice.ErrInvoiceNotPayable
	}
	if inv.PaidAmount+amount > inv.TotalAmount {
		return nil, invoice.ErrPaidExceedsTotal
	}
	inv.PaidAmount += amount
	if inv.PaidAmount == inv.TotalAmount {
		now := s.clock().UTC()
		inv.Status = invoice.InvoicePaid
		inv.PaidAt = &now
	}
	s.invoices[invoiceID] = inv
	return &inv, nil
}
