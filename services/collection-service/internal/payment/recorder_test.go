// services/collection-service/internal/payment/recorder_test.go
package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- MOCKS ---

type MockInvoiceReader struct {
	Invoice  *invoice.Invoice
	FetchErr error
}

func (m *MockInvoiceReader) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if m.Invoice == nil || m.Invoice.InvoiceID != id {
		return nil, invoice.ErrInvoiceNotFound
	}
	return m.Invoice, nil
}

type MockPaymentStore struct {
	Created     []*Payment
	CreateErr   error
	Unconfirmed int64
	SumErr      error
	SummedFor   *uuid.UUID
}

func (m *MockPaymentStore) CreatePayment(ctx context.Context, p *Payment) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created = append(m.Created, p)
	return nil
}

// Unused methods for this specific test, but required by interface
func (m *MockPaymentStore) GetPaymentsByIDs(ctx context.Context, ids []uuid.UUID) ([]Payment, error) {
	return nil, nil
}
func (m *MockPaymentStore) AttachToDeposit(ctx context.Context, depositID uuid.UUID, ids []uuid.UUID) error {
	return nil
}
func (m *MockPaymentStore) VoidPayments(ctx context.Context, ids []uuid.UUID, reason string) error {
	return nil
}

func (m *MockPaymentStore) UnconfirmedAmount(ctx context.Context, invoiceID uuid.UUID, collectorID *uuid.UUID) (int64, error) {
	m.SummedFor = collectorID
	return m.Unconfirmed, m.SumErr
}

// --- TESTS ---

var errSumFailed = errors.New("sum query failed")

func TestRecordPayment(t *testing.T) {
	invoiceID := uuid.New()
	collectorID := uuid.New()
	fixedNow := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	openInvoice := func(status invoice.InvoiceStatus, total, paid int64) *invoice.Invoice {
		return &invoice.Invoice{
			InvoiceID:   invoiceID,
			TenantID:    uuid.New(),
			ClientID:    uuid.New(),
			TotalAmount: total,
			PaidAmount:  paid,
			Currency:    "IDR",
			Status:      status,
		}
	}

	tests := []struct {
		name          string
		invoice       *invoice.Invoice
		req           RecordRequest
		storeErr      error
		unconfirmed   int64
		sumErr        error
		expectedError error
	}{
		{
			name:    "Happy Path: cash payment on pending invoice",
			invoice: openInvoice(invoice.InvoicePending, 150_000, 0),
			req:     RecordRequest{InvoiceID: invoiceID, Amount: 150_000, Method: MethodCash, CollectorID: &collectorID},
		},
		{
			name:    "Overdue invoices still take money",
			invoice: openInvoice(invoice.InvoiceOverdue, 150_000, 50_000),
			req:     RecordRequest{InvoiceID: invoiceID, Amount: 100_000, Method: MethodCash},
		},
		{
			name:          "Zero amount rejected",
			invoice:       openInvoice(invoice.InvoicePending, 150_000, 0),
			req:           RecordRequest{InvoiceID: invoiceID, Amount: 0, Method: MethodCash},
			expectedError: ErrInvalidAmount,
		},
		{
			name:          "Unknown method rejected",
			invoice:       openInvoice(invoice.InvoicePending, 150_000, 0),
			req:           RecordRequest{InvoiceID: invoiceID, Amount: 10, Method: "barter"},
			expectedError: ErrInvalidMethod,
		},
		{
			name:          "Paid invoice rejected",
			invoice:       openInvoice(invoice.InvoicePaid, 150_000, 150_000),
			req:           RecordRequest{InvoiceID: invoiceID, Amount: 10, Method: MethodCash},
			expectedError: invoice.ErrInvoiceNotPayable,
		},
		{
			name:          "More than outstanding rejected",
			invoice:       openInvoice(invoice.InvoicePending, 150_000, 100_000),
			req:           RecordRequest{InvoiceID: invoiceID, Amount: 50_001, Method: MethodCash},
			expectedError: ErrExceedsOutstanding,
		},
		{
			name:          "Unconfirmed payments count against outstanding",
			invoice:       openInvoice(invoice.InvoicePending, 150_000, 0),
			req:           RecordRequest{InvoiceID: invoiceID, Amount: 50_001, Method: MethodCash, CollectorID: &collectorID},
			unconfirmed:   100_000,
			expectedError: ErrExceedsOutstanding,
		},
		{
			name:        "Remainder after unconfirmed payments accepted",
			invoice:     openInvoice(invoice.InvoicePending, 150_000, 0),
			req:         RecordRequest{InvoiceID: invoiceID, Amount: 50_000, Method: MethodCash, CollectorID: &collectorID},
			unconfirmed: 100_000,
		},
		{
			name:          "Unconfirmed sum failure surfaces",
			invoice:       openInvoice(invoice.InvoicePending, 150_000, 0),
			req:           RecordRequest{InvoiceID: invoiceID, Amount: 10, Method: MethodCash},
			sumErr:        errSumFailed,
			expectedError: errSumFailed,
		},
		{
			name:          "Missing invoice",
			req:           RecordRequest{InvoiceID: invoiceID, Amount: 10, Method: MethodCash},
			expectedError: invoice.ErrInvoiceNotFound,
		},
		{
			name:          "Store failure surfaces",
			invoice:       openInvoice(invoice.InvoicePending, 150_000, 0),
			req:           RecordRequest{InvoiceID: invoiceID, Amount: 10, Method: MethodCash},
			storeErr:      errors.New("connection refused"),
			expectedError: nil, // checked separately below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1. SETUP
			store := &MockPaymentStore{CreateErr: tt.storeErr, Unconfirmed: tt.unconfirmed, SumErr: tt.sumErr}
			rec := NewRecorder(&MockInvoiceReader{Invoice: tt.invoice}, store).
				WithClock(func() time.Time { return fixedNow })

			// 2. EXECUTE
			p, err := rec.RecordPayment(context.Background(), tt.req)

			// 3. ASSERT
			if tt.storeErr != nil {
				require.Error(t, err)
				assert.Empty(t, store.Created)
				return
			}
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "expected %v, got %v", tt.expectedError, err)
				assert.Empty(t, store.Created, "nothing may be written on validation failure")
				return
			}
			require.NoError(t, err)
			require.Len(t, store.Created, 1)
			assert.Equal(t, tt.req.Amount, p.Amount)
			assert.Equal(t, tt.invoice.ClientID, p.ClientID)
			assert.Equal(t, "IDR", p.Currency)
			assert.Equal(t, fixedNow, p.ReceivedAt)
			assert.Nil(t, p.DepositID)
			assert.Equal(t, tt.req.CollectorID, store.SummedFor)
		})
	}
}

func TestRecordPayment_DefaultCurrency(t *testing.T) {
	inv := &invoice.Invoice{InvoiceID: uuid.New(), ClientID: uuid.New(), TotalAmount: 100, Status: invoice.InvoicePending}
	store := &MockPaymentStore{}
	rec := NewRecorder(&MockInvoiceReader{Invoice: inv}, store).WithDefaultCurrency("IDR")

	p, err := rec.RecordPayment(context.Background(), RecordRequest{InvoiceID: inv.InvoiceID, Amount: 40, Method: MethodCash})

	require.NoError(t, err)
	assert.Equal(t, "IDR", p.Currency)
}
