// services/collection-service/internal/report/settlement_export_test.go
package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type MockDepositLister struct {
	batches   []deposit.DepositBatch
	err       error
	gotFrom   time.Time
	gotTo     time.Time
	gotTenant uuid.UUID
}

func (m *MockDepositLister) ListConfirmedDeposits(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]deposit.DepositBatch, error) {
	m.gotTenant, m.gotFrom, m.gotTo = tenantID, from, to
	return m.batches, m.err
}

var reportNow = time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)

func confirmedBatch(collector uuid.UUID, amount int64, currency string) deposit.DepositBatch {
	at := reportNow.Add(-2 * time.Hour)
	by := uuid.New()
	return deposit.DepositBatch{
		ID:          uuid.New(),
		CollectorID: collector,
		Day:         "2026-03-14",
		Amount:      amount,
		Currency:    currency,
		PaymentIDs:  []uuid.UUID{uuid.New(), uuid.New()},
		InvoiceIDs:  []uuid.UUID{uuid.New()},
		ProofURL:    "/uploads/slip.png",
		SubmittedAt: at.Add(-time.Hour),
		Confirmed:   true,
		ConfirmedAt: &at,
		ConfirmedBy: &by,
	}
}

func TestWriteXLSX(t *testing.T) {
	// 1. SETUP
	collector := uuid.New()
	lister := &MockDepositLister{batches: []deposit.DepositBatch{
		confirmedBatch(collector, 250_000, "IDR"),
		confirmedBatch(collector, 50_000, "IDR"),
		confirmedBatch(uuid.New(), 1_000, "USD"),
	}}
	exporter := NewSettlementExporter(lister).WithClock(func() time.Time { return reportNow })
	tenant := uuid.New()
	from, to := reportNow.AddDate(0, 0, -1), reportNow

	// 2. EXECUTE
	var buf bytes.Buffer
	totals, err := exporter.WriteXLSX(context.Background(), &buf, tenant, from, to)

	// 3. ASSERT
	require.NoError(t, err)
	assert.Equal(t, tenant, lister.gotTenant)
	assert.Equal(t, 3, totals.Deposits)
	assert.Equal(t, int64(300_000), totals.Amount["IDR"])
	assert.Equal(t, int64(1_000), totals.Amount["USD"])

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(depositsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per deposit")
	assert.Equal(t, depositHeaders, rows[0])
	assert.Equal(t, lister.batches[0].ID.String(), rows[1][0])
	assert.Equal(t, "250000", rows[1][8])
	assert.Equal(t, "2", rows[1][6])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Deposits", "3"}, summary[4])
	assert.Equal(t, []string{"IDR", "300000"}, summary[7])
	assert.Equal(t, []string{"USD", "1000"}, summary[8])
}

func TestExportDay(t *testing.T) {
	lister := &MockDepositLister{}
	dir := t.TempDir()
	tenant := uuid.New()

	path, err := NewSettlementExporter(lister).ExportDay(context.Background(), dir, tenant, time.Date(2026, 3, 14, 17, 30, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), lister.gotFrom)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), lister.gotTo)
	assert.Contains(t, path, "settlement_"+tenant.String()+"_2026-03-14.xlsx")
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestBuild_StoreError(t *testing.T) {
	boom := errors.New("db down")
	_, _, err := NewSettlementExporter(&MockDepositLister{err: boom}).Build(context.Background(), uuid.New(), reportNow, reportNow)
	assert.ErrorIs(t, err, boom)
}
