// services/collection-service/internal/store/postgres/billing_store.postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/google/uuid"
)

// Clients, packages and invoices belong to upstream billing. Only
// invoices.paid_amount, status and paid_at are written here.

func (s *Store) GetClientByID(ctx context.Context, clientID uuid.UUID) (*pricing.Client, error) {
	query := `
		SELECT id, tenant_id, name, service_package_id, device_count, discount_kind, discount_value
		FROM clients
		WHERE id = $1`

	var c pricing.Client
	var pkgID uuid.NullUUID
	var kind sql.NullString
	var value int64
	err := s.conn(ctx).QueryRowContext(ctx, query, clientID).Scan(
		&c.ID,
		&c.TenantID,
		&c.Name,
		&pkgID,
		&c.DeviceCount,
		&kind,
		&value,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pricing.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	c.ServicePackageID = uuidPtr(pkgID)
	if c.Discount, err = pricing.NewDiscount(kind.String, value); err != nil {
		return nil, fmt.Errorf("client %s: %w", c.ID, err)
	}
	return &c, nil
}

func (s *Store) ListServicePackages(ctx context.Context, tenantID uuid.UUID) ([]pricing.ServicePackage, error) {
	query := `
		SELECT id, tenant_id, name, pricing_model, price_monthly, price_per_device, currency
		FROM service_packages
		WHERE tenant_id = $1`

	rows, err := s.conn(ctx).QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service packages: %w", err)
	}
	defer rows.Close()

	var pkgs []pricing.ServicePackage
	for rows.Next() {
		var p pricing.ServicePackage
		var model string
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &model, &p.PriceMonthly, &p.PricePerDevice, &p.Currency); err != nil {
			return nil, err
		}
		p.PricingModel = pricing.PricingModel(model)
		pkgs = append(pkgs, p)
	}
	return pkgs, rows.Err()
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (invoice_id, tenant_id, client_id, total_amount, paid_amount, currency, due_date, status, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var due sql.NullTime
	if !inv.DueDate.IsZero() {
		due = sql.NullTime{Time: inv.DueDate, Valid: true}
	}
	_, err := s.conn(ctx).ExecContext(ctx, query,
		inv.InvoiceID,
		inv.TenantID,
		inv.ClientID,
		inv.TotalAmount,
		inv.PaidAmount,
		inv.Currency,
		due,
		inv.Status,
		inv.CreatedAt,
		nullTime(inv.PaidAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

const invoiceColumns = `invoice_id, tenant_id, client_id, total_amount, paid_amount, currency, due_date, status, created_at, paid_at`

func scanInvoice(row interface{ Scan(...any) error }) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	var status string
	// We use sql.NullTime for nullable timestamps
	var due, paidAt sql.NullTime
	if err := row.Scan(
		&inv.InvoiceID,
		&inv.TenantID,
		&inv.ClientID,
		&inv.TotalAmount,
		&inv.PaidAmount,
		&inv.Currency,
		&due,
		&status,
		&inv.CreatedAt,
		&paidAt,
	); err != nil {
		return nil, err
	}
	inv.Status = invoice.InvoiceStatus(status)
	if due.Valid {
		inv.DueDate = due.Time
	}
	inv.PaidAt = timePtr(paidAt)
	return &inv, nil
}

func (s *Store) GetInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1`
	inv, err := scanInvoice(s.conn(ctx).QueryRowContext(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	return inv, nil
}

// ApplyPayment is a guarded increment: the status and the paid <= total bound
// are checked by the UPDATE itself.
func (s *Store) ApplyPayment(ctx context.Context, invoiceID uuid.UUID, amount int64) (*invoice.Invoice, error) {
	query := `
		UPDATE invoices
		SET paid_amount = paid_amount + $2,
		    status = CASE WHEN paid_amount + $2 = total_amount THEN 'paid' ELSE status END,
		    paid_at = CASE WHEN paid_amount + $2 = total_amount THEN NOW() ELSE paid_at END
		WHERE invoice_id = $1
		  AND status IN ('pending', 'overdue')
		  AND paid_amount + $2 <= total_amount
		RETURNING ` + invoiceColumns

	inv, err := scanInvoice(s.conn(ctx).QueryRowContext(ctx, query, invoiceID, amount))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to apply payment: %w", err)
	}

	// 0 rows: find out which guard failed
	current, err := s.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !current.IsPayable() {
		return nil, invoice.ErrInvoiceNotPayable
	}
	return nil, invoice.ErrPaidExceedsTotal
}
