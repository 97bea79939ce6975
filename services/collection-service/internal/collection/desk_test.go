// services/collection-service/internal/collection/desk_test.go

package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- MOCKS ---

type MockClientReader struct {
	Clients map[uuid.UUID]pricing.Client
}

func (m *MockClientReader) GetClientByID(ctx context.Context, id uuid.UUID) (*pricing.Client, error) {
	c, ok := m.Clients[id]
	if !ok {
		return nil, pricing.ErrClientNotFound
	}
	return &c, nil
}

func (m *MockClientReader) ListServicePackages(ctx context.Context, tenantID uuid.UUID) ([]pricing.ServicePackage, error) {
	return nil, nil
}

type MockRecorder struct {
	Invoice     *invoice.Invoice
	ValidateErr error
	Recorded    []payment.RecordRequest
}

func (m *MockRecorder) Validate(ctx context.Context, req payment.RecordRequest) (*invoice.Invoice, error) {
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	return m.Invoice, nil
}

func (m *MockRecorder) RecordPayment(ctx context.Context, req payment.RecordRequest) (*payment.Payment, error) {
	if _, err := m.Validate(ctx, req); err != nil {
		return nil, err
	}
	m.Recorded = append(m.Recorded, req)
	return &payment.Payment{
		ID:          uuid.New(),
		InvoiceID:   req.InvoiceID,
		ClientID:    m.Invoice.ClientID,
		Amount:      req.Amount,
		Currency:    "IDR",
		Method:      req.Method,
		CollectorID: req.CollectorID,
	}, nil
}

type MockAssignmentGate struct {
	Err     error
	Checked []uuid.UUID
	By      uuid.UUID
}

func (m *MockAssignmentGate) CheckCollectable(ctx context.Context, collectorID uuid.UUID, invoiceIDs []uuid.UUID) error {
	m.By = collectorID
	m.Checked = append(m.Checked, invoiceIDs...)
	return m.Err
}

// --- TESTS ---

func TestDesk_Collect(t *testing.T) {
	f := newFixture()
	client := clientOn(f.flat, nil)
	client.TenantID = f.tenantID
	inv := &invoice.Invoice{InvoiceID: uuid.New(), ClientID: client.ID, TotalAmount: 150_000, Status: invoice.InvoicePending}

	tests := []struct {
		name          string
		partial       bool
		amount        int64
		invoice       *invoice.Invoice
		validateErr   error
		expectedError error
		expectedTotal int64
	}{
		{name: "Full payment defaults to amount due", amount: 0, invoice: inv, expectedTotal: 150_000},
		{name: "Full payment with explicit due amount", amount: 150_000, invoice: inv, expectedTotal: 150_000},
		{name: "Full payment with wrong amount", amount: 100_000, invoice: inv, expectedError: ErrAmountMismatch},
		{name: "Partial payment", partial: true, amount: 60_000, invoice: inv, expectedTotal: 60_000},
		{name: "Partial payment covering everything", partial: true, amount: 150_000, invoice: inv, expectedError: ErrNotPartial},
		{
			name:          "Invoice of another client",
			amount:        0,
			invoice:       &invoice.Invoice{InvoiceID: inv.InvoiceID, ClientID: uuid.New(), Status: invoice.InvoicePending},
			expectedError: ErrClientMismatch,
		},
		{
			name:          "Recorder validation failure",
			amount:        0,
			invoice:       inv,
			validateErr:   invoice.ErrInvoiceNotPayable,
			expectedError: invoice.ErrInvoiceNotPayable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1. SETUP
			rec := &MockRecorder{Invoice: tt.invoice, ValidateErr: tt.validateErr}
			desk := NewDesk(&MockClientReader{Clients: map[uuid.UUID]pricing.Client{client.ID: client}}, rec)
			l := f.ledger()
			req := payment.RecordRequest{InvoiceID: inv.InvoiceID, Amount: tt.amount, Method: payment.MethodCash}

			// 2. EXECUTE
			var err error
			if tt.partial {
				_, err = desk.CollectPartial(context.Background(), l, client.ID, req)
			} else {
				_, err = desk.CollectFull(context.Background(), l, client.ID, req)
			}

			// 3. ASSERT
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "expected %v, got %v", tt.expectedError, err)
				assert.Empty(t, rec.Recorded, "no payment may be persisted when the ledger would reject it")
				assert.Equal(t, int64(0), l.TotalCollected())
				return
			}
			require.NoError(t, err)
			require.Len(t, rec.Recorded, 1)
			require.NotNil(t, rec.Recorded[0].CollectorID)
			assert.Equal(t, f.collectorID, *rec.Recorded[0].CollectorID)
			assert.Equal(t, tt.expectedTotal, l.TotalCollected())
		})
	}
}

func TestDesk_UnknownClient(t *testing.T) {
	f := newFixture()
	desk := NewDesk(&MockClientReader{}, &MockRecorder{})
	_, err := desk.CollectFull(context.Background(), f.ledger(), uuid.New(), payment.RecordRequest{})
	assert.ErrorIs(t, err, pricing.ErrClientNotFound)

	// a client of another tenant is invisible to this ledger
	foreign := clientOn(f.flat, nil)
	foreign.TenantID = uuid.New()
	rec := &MockRecorder{}
	desk = NewDesk(&MockClientReader{Clients: map[uuid.UUID]pricing.Client{foreign.ID: foreign}}, rec)
	_, err = desk.CollectFull(context.Background(), f.ledger(), foreign.ID, payment.RecordRequest{})
	assert.ErrorIs(t, err, pricing.ErrClientNotFound)
	assert.Empty(t, rec.Recorded)
}

func TestDesk_AssignmentGate(t *testing.T) {
	f := newFixture()
	client := clientOn(f.flat, nil)
	client.TenantID = f.tenantID
	inv := &invoice.Invoice{InvoiceID: uuid.New(), ClientID: client.ID, TotalAmount: 150_000, Status: invoice.InvoicePending}

	tests := []struct {
		name          string
		partial       bool
		gateErr       error
		expectedError error
	}{
		{name: "Visited invoice is collected"},
		{name: "Visited invoice partial", partial: true},
		{name: "Visit not recorded", gateErr: assignment.ErrInvalidTransition, expectedError: assignment.ErrInvalidTransition},
		{name: "Visit not recorded partial", partial: true, gateErr: assignment.ErrInvalidTransition, expectedError: assignment.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1. SETUP
			rec := &MockRecorder{Invoice: inv}
			gate := &MockAssignmentGate{Err: tt.gateErr}
			desk := NewDesk(&MockClientReader{Clients: map[uuid.UUID]pricing.Client{client.ID: client}}, rec).WithAssignments(gate)
			l := f.ledger()
			req := payment.RecordRequest{InvoiceID: inv.InvoiceID, Method: payment.MethodCash}
			if tt.partial {
				req.Amount = 50_000
			}

			// 2. EXECUTE
			var err error
			if tt.partial {
				_, err = desk.CollectPartial(context.Background(), l, client.ID, req)
			} else {
				_, err = desk.CollectFull(context.Background(), l, client.ID, req)
			}

			// 3. ASSERT
			assert.Equal(t, []uuid.UUID{inv.InvoiceID}, gate.Checked)
			assert.Equal(t, f.collectorID, gate.By)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, rec.Recorded)
				assert.Equal(t, int64(0), l.TotalCollected())
				return
			}
			require.NoError(t, err)
			assert.Len(t, rec.Recorded, 1)
		})
	}
}

type countingCatalog struct {
	MockClientReader
	pkgs  []pricing.ServicePackage
	loads int
}

func (c *countingCatalog) ListServicePackages(ctx context.Context, tenantID uuid.UUID) ([]pricing.ServicePackage, error) {
	c.loads++
	return c.pkgs, nil
}

func TestRegistry_OpenReusesLedger(t *testing.T) {
	f := newFixture()
	catalog := &countingCatalog{pkgs: []pricing.ServicePackage{f.flat}}
	reg := NewRegistry(catalog)
	tenant := uuid.New()

	l1, err := reg.Open(context.Background(), tenant, f.collectorID, "2026-03-14")
	require.NoError(t, err)
	l2, err := reg.Open(context.Background(), tenant, f.collectorID, "2026-03-14")
	require.NoError(t, err)
	assert.Same(t, l1, l2)
	assert.Equal(t, 1, catalog.loads)

	other, err := reg.Open(context.Background(), tenant, uuid.New(), "2026-03-14")
	require.NoError(t, err)
	assert.NotSame(t, l1, other, "collectors never share a ledger")

	_, err = reg.Open(context.Background(), uuid.New(), f.collectorID, "2026-03-14")
	assert.Error(t, err)

	got, ok := reg.Get(f.collectorID, "2026-03-14")
	require.True(t, ok)
	assert.Same(t, l1, got)

	assert.Equal(t, 2, reg.Prune("2026-03-15"))
	_, ok = reg.Get(f.collectorID, "2026-03-14")
	assert.False(t, ok)
}
