// services/collection-service/internal/report/settlement_export.go
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	depositsSheet = "Deposits"
	summarySheet  = "Summary"
	dateTime      = "2006-01-02 15:04:05"
)

// DepositLister reads confirmed deposits for a tenant in [from, to).
type DepositLister interface {
	ListConfirmedDeposits(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]deposit.DepositBatch, error)
}

// Totals is the summary of one report, per currency.
type Totals struct {
	Deposits int
	Amount   map[string]int64
}

// SettlementExporter renders confirmed deposits as an XLSX workbook for finance.
type SettlementExporter struct {
	deposits DepositLister
	clock    func() time.Time
}

func NewSettlementExporter(deposits DepositLister) *SettlementExporter {
	return &SettlementExporter{deposits: deposits, clock: time.Now}
}

func (e *SettlementExporter) WithClock(clock func() time.Time) *SettlementExporter {
	e.clock = clock
	return e
}

var depositHeaders = []string{
	"Deposit ID", "Collector ID", "Collection Day", "Submitted At", "Confirmed At", "Confirmed By",
	"Payments", "Invoices", "Amount (minor units)", "Currency", "Proof URL",
}

// Build renders the workbook. The caller closes the returned file.
func (e *SettlementExporter) Build(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*excelize.File, Totals, error) {
	batches, err := e.deposits.ListConfirmedDeposits(ctx, tenantID, from, to)
	if err != nil {
		return nil, Totals{}, fmt.Errorf("failed to list confirmed deposits: %w", err)
	}

	f := excelize.NewFile()
	// the default sheet becomes the deposit list
	if err := f.SetSheetName("Sheet1", depositsSheet); err != nil {
		f.Close()
		return nil, Totals{}, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for colIdx, h := range depositHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(depositsSheet, cell, h)
		f.SetCellStyle(depositsSheet, cell, cell, headerStyle)
	}
	f.SetColWidth(depositsSheet, "A", "F", 38)
	f.SetColWidth(depositsSheet, "G", "J", 16)
	f.SetColWidth(depositsSheet, "K", "K", 60)

	totals := Totals{Amount: make(map[string]int64)}
	perCollector := make(map[uuid.UUID]int64)
	for i, b := range batches {
		confirmedAt, confirmedBy := "", ""
		if b.ConfirmedAt != nil {
			confirmedAt = b.ConfirmedAt.UTC().Format(dateTime)
		}
		if b.ConfirmedBy != nil {
			confirmedBy = b.ConfirmedBy.String()
		}
		row := []any{
			b.ID.String(), b.CollectorID.String(), b.Day, b.SubmittedAt.UTC().Format(dateTime), confirmedAt, confirmedBy,
			len(b.PaymentIDs), len(b.InvoiceIDs), b.Amount, b.Currency, b.ProofURL,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(depositsSheet, cell, &row); err != nil {
			f.Close()
			return nil, Totals{}, err
		}
		totals.Deposits++
		totals.Amount[b.Currency] += b.Amount
		perCollector[b.CollectorID] += b.Amount
	}

	if err := e.writeSummary(f, tenantID, from, to, totals, perCollector); err != nil {
		f.Close()
		return nil, Totals{}, err
	}
	return f, totals, nil
}

func (e *SettlementExporter) writeSummary(f *excelize.File, tenantID uuid.UUID, from, to time.Time, totals Totals, perCollector map[uuid.UUID]int64) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	f.SetCellValue(summarySheet, "A1", "Settlement report")
	f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)
	f.SetCellValue(summarySheet, "A2", "Tenant")
	f.SetCellValue(summarySheet, "B2", tenantID.String())
	f.SetCellValue(summarySheet, "A3", "Period")
	f.SetCellValue(summarySheet, "B3", fmt.Sprintf("%s to %s", from.UTC().Format(dateTime), to.UTC().Format(dateTime)))
	f.SetCellValue(summarySheet, "A4", "Generated")
	f.SetCellValue(summarySheet, "B4", e.clock().UTC().Format(dateTime))
	f.SetCellValue(summarySheet, "A5", "Deposits")
	f.SetCellValue(summarySheet, "B5", totals.Deposits)

	row := 7
	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Currency")
	f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Total (minor units)")
	currencies := make([]string, 0, len(totals.Amount))
	for c := range totals.Amount {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		row++
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), c)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), totals.Amount[c])
	}

	row += 2
	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Collector ID")
	f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Deposited (minor units)")
	collectors := make([]uuid.UUID, 0, len(perCollector))
	for id := range perCollector {
		collectors = append(collectors, id)
	}
	sort.Slice(collectors, func(i, j int) bool { return collectors[i].String() < collectors[j].String() })
	for _, id := range collectors {
		row++
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), id.String())
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), perCollector[id])
	}
	f.SetColWidth(summarySheet, "A", "B", 40)
	return nil
}

// WriteXLSX renders the report straight to w (an HTTP response, for instance).
func (e *SettlementExporter) WriteXLSX(ctx context.Context, w io.Writer, tenantID uuid.UUID, from, to time.Time) (Totals, error) {
	f, totals, err := e.Build(ctx, tenantID, from, to)
	if err != nil {
		return Totals{}, err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return Totals{}, fmt.Errorf("failed to write report: %w", err)
	}
	return totals, nil
}

// ExportDay writes the report of one UTC day to dir and returns the file path.
func (e *SettlementExporter) ExportDay(ctx context.Context, dir string, tenantID uuid.UUID, day time.Time) (string, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	f, _, err := e.Build(ctx, tenantID, from, to)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("settlement_%s_%s.xlsx", tenantID, from.Format("2006-01-02")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}
