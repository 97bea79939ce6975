// services/collection-service/internal/store/postgres/deposit_store.postgres.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/audit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const depositKeyConstraint = "deposit_batches_idempotency_key_key"

const depositColumns = `id, tenant_id, collector_id, day, amount, currency,
	client_ids, payment_ids, invoice_ids, voided_payment_ids,
	proof_url, idempotency_key, submitted_at, confirmed, confirmed_at, confirmed_by`

func (s *Store) CreateDeposit(ctx context.Context, b *deposit.DepositBatch) error {
	query := `
		INSERT INTO deposit_batches (id, tenant_id, collector_id, day, amount, currency,
			client_ids, payment_ids, invoice_ids, voided_payment_ids,
			proof_url, idempotency_key, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::uuid[], $8::uuid[], $9::uuid[], $10::uuid[], $11, $12, $13)`

	_, err := s.conn(ctx).ExecContext(ctx, query,
		b.ID,
		b.TenantID,
		b.CollectorID,
		b.Day,
		b.Amount,
		b.Currency,
		uuidArray(b.ClientIDs),
		uuidArray(b.PaymentIDs),
		uuidArray(b.InvoiceIDs),
		uuidArray(b.VoidedPaymentIDs),
		b.ProofURL,
		b.IdempotencyKey,
		b.SubmittedAt,
	)
	if err != nil {
		if uniqueViolationOn(err, depositKeyConstraint) {
			return deposit.ErrDuplicateDeposit
		}
		return fmt.Errorf("failed to insert deposit: %w", err)
	}
	return nil
}

func scanDeposit(row interface{ Scan(...any) error }) (*deposit.DepositBatch, error) {
	var b deposit.DepositBatch
	var clients, payments, invoices, voided pq.StringArray
	var confirmedAt sql.NullTime
	var confirmedBy uuid.NullUUID
	if err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.CollectorID,
		&b.Day,
		&b.Amount,
		&b.Currency,
		&clients,
		&payments,
		&invoices,
		&voided,
		&b.ProofURL,
		&b.IdempotencyKey,
		&b.SubmittedAt,
		&b.Confirmed,
		&confirmedAt,
		&confirmedBy,
	); err != nil {
		return nil, err
	}
	var err error
	if b.ClientIDs, err = parseUUIDs(clients); err != nil {
		return nil, err
	}
	if b.PaymentIDs, err = parseUUIDs(payments); err != nil {
		return nil, err
	}
	if b.InvoiceIDs, err = parseUUIDs(invoices); err != nil {
		return nil, err
	}
	if b.VoidedPaymentIDs, err = parseUUIDs(voided); err != nil {
		return nil, err
	}
	b.SubmittedAt = b.SubmittedAt.UTC()
	b.ConfirmedAt = timePtr(confirmedAt)
	b.ConfirmedBy = uuidPtr(confirmedBy)
	return &b, nil
}

func (s *Store) getDeposit(ctx context.Context, where string, arg any) (*deposit.DepositBatch, error) {
	query := `SELECT ` + depositColumns + ` FROM deposit_batches WHERE ` + where
	b, err := scanDeposit(s.conn(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deposit.ErrDepositNotFound
		}
		return nil, fmt.Errorf("failed to fetch deposit: %w", err)
	}
	return b, nil
}

func (s *Store) GetDepositByID(ctx context.Context, id uuid.UUID) (*deposit.DepositBatch, error) {
	return s.getDeposit(ctx, "id = $1", id)
}

func (s *Store) GetDepositByIdempotencyKey(ctx context.Context, key string) (*deposit.DepositBatch, error) {
	return s.getDeposit(ctx, "idempotency_key = $1", key)
}

// MarkDepositConfirmed is the confirm CAS. A concurrent confirm blocks on the
// row lock and then matches 0 rows.
func (s *Store) MarkDepositConfirmed(ctx context.Context, id uuid.UUID, at time.Time, by uuid.UUID) error {
	query := `
		UPDATE deposit_batches
		SET confirmed = TRUE, confirmed_at = $2, confirmed_by = $3
		WHERE id = $1 AND confirmed = FALSE`

	res, err := s.conn(ctx).ExecContext(ctx, query, id, at, by)
	if err != nil {
		return fmt.Errorf("failed to confirm deposit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetDepositByID(ctx, id); err != nil {
			return err
		}
		return deposit.ErrAlreadyConfirmed
	}
	return nil
}

func (s *Store) ListUnconfirmedDeposits(ctx context.Context, submittedBefore time.Time, limit int) ([]deposit.DepositBatch, error) {
	query := `SELECT ` + depositColumns + `
		FROM deposit_batches
		WHERE NOT confirmed AND submitted_at < $1
		ORDER BY submitted_at
		LIMIT $2`
	return s.listDeposits(ctx, query, submittedBefore, limit)
}

func (s *Store) ListConfirmedDeposits(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]deposit.DepositBatch, error) {
	query := `SELECT ` + depositColumns + `
		FROM deposit_batches
		WHERE tenant_id = $1 AND confirmed AND confirmed_at >= $2 AND confirmed_at < $3
		ORDER BY confirmed_at`
	return s.listDeposits(ctx, query, tenantID, from, to)
}

func (s *Store) listDeposits(ctx context.Context, query string, args ...any) ([]deposit.DepositBatch, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	defer rows.Close()

	var out []deposit.DepositBatch
	for rows.Next() {
		b, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// AppendAuditEvent inserts one append-only audit row.
func (s *Store) AppendAuditEvent(ctx context.Context, e *audit.Event) error {
	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}
	query := `
		INSERT INTO audit_events (id, actor_user_id, tenant_id, action, target_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = s.conn(ctx).ExecContext(ctx, query, e.ID, nullUUID(e.ActorUserID), e.TenantID, e.Action, e.TargetID, meta, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
