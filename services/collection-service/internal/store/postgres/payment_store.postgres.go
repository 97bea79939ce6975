// services/collection-service/internal/store/postgres/payment_store.postgres.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/google/uuid"
)

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (id, tenant_id, invoice_id, client_id, amount, currency, method, collector_id, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.conn(ctx).ExecContext(ctx, query,
		p.ID,
		p.TenantID,
		p.InvoiceID,
		p.ClientID,
		p.Amount,
		p.Currency,
		p.Method,
		nullUUID(p.CollectorID),
		p.ReceivedAt,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *Store) GetPaymentsByIDs(ctx context.Context, ids []uuid.UUID) ([]payment.Payment, error) {
	query := `
		SELECT id, tenant_id, invoice_id, client_id, amount, currency, method, collector_id, received_at, created_at, deposit_id, voided_at
		FROM payments
		WHERE id = ANY($1::uuid[])`

	rows, err := s.conn(ctx).QueryContext(ctx, query, uuidArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	defer rows.Close()

	var out []payment.Payment
	for rows.Next() {
		var p payment.Payment
		var method string
		var collectorID, depositID uuid.NullUUID
		var voidedAt sql.NullTime
		if err := rows.Scan(
			&p.ID,
			&p.TenantID,
			&p.InvoiceID,
			&p.ClientID,
			&p.Amount,
			&p.Currency,
			&method,
			&collectorID,
			&p.ReceivedAt,
			&p.CreatedAt,
			&depositID,
			&voidedAt,
		); err != nil {
			return nil, err
		}
		p.Method = payment.Method(method)
		p.CollectorID = uuidPtr(collectorID)
		p.DepositID = uuidPtr(depositID)
		p.VoidedAt = timePtr(voidedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UnconfirmedAmount(ctx context.Context, invoiceID uuid.UUID, collectorID *uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		LEFT JOIN deposit_batches d ON d.id = p.deposit_id
		WHERE p.invoice_id = $1
		  AND p.voided_at IS NULL
		  AND (d.id IS NULL OR NOT d.confirmed)
		  AND NOT (p.deposit_id IS NULL AND $2::uuid IS NOT NULL AND p.collector_id = $2::uuid)`

	var sum int64
	if err := s.conn(ctx).QueryRowContext(ctx, query, invoiceID, nullUUID(collectorID)).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum unconfirmed payments: %w", err)
	}
	return sum, nil
}

// AttachToDeposit and VoidPayments touch only open rows. Both run in a
// transaction so a partial match changes nothing.
func (s *Store) AttachToDeposit(ctx context.Context, depositID uuid.UUID, paymentIDs []uuid.UUID) error {
	query := `
		UPDATE payments SET deposit_id = $1
		WHERE id = ANY($2::uuid[]) AND deposit_id IS NULL AND voided_at IS NULL`
	return s.updateOpenPayments(ctx, paymentIDs, query, depositID, uuidArray(paymentIDs))
}

func (s *Store) VoidPayments(ctx context.Context, paymentIDs []uuid.UUID, reason string) error {
	query := `
		UPDATE payments SET voided_at = NOW(), void_reason = $2
		WHERE id = ANY($1::uuid[]) AND deposit_id IS NULL AND voided_at IS NULL`
	return s.updateOpenPayments(ctx, paymentIDs, query, uuidArray(paymentIDs), reason)
}

func (s *Store) updateOpenPayments(ctx context.Context, ids []uuid.UUID, query string, args ...any) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update payments: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if int(n) == len(ids) {
			return nil
		}

		var found int
		err = s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE id = ANY($1::uuid[])`, uuidArray(ids)).Scan(&found)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		if found != len(ids) {
			return payment.ErrPaymentNotFound
		}
		return payment.ErrPaymentAlreadyDeposited
	})
}
