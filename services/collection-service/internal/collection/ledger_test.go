// services/collection-service/internal/collection/ledger_test.go

package collection

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	tenantID    uuid.UUID
	collectorID uuid.UUID
	flat        pricing.ServicePackage
	big         pricing.ServicePackage
	calc        *pricing.Calculator
}

func newFixture() *fixture {
	flat := pricing.ServicePackage{ID: uuid.New(), PricingModel: pricing.PricingFlat, PriceMonthly: 150_000, Currency: "IDR"}
	big := pricing.ServicePackage{ID: uuid.New(), PricingModel: pricing.PricingFlat, PriceMonthly: 200_000, Currency: "IDR"}
	f := &fixture{
		tenantID:    uuid.New(),
		collectorID: uuid.New(),
		flat:        flat,
		big:         big,
		calc:        pricing.NewCalculator(pricing.NewCatalog([]pricing.ServicePackage{flat, big})),
	}
	return f
}

func (f *fixture) ledger() *Ledger {
	return NewLedger(f.tenantID, f.collectorID, "2026-03-14", f.calc)
}

func clientOn(pkg pricing.ServicePackage, d pricing.Discount) pricing.Client {
	id := pkg.ID
	return pricing.Client{ID: uuid.New(), ServicePackageID: &id, Discount: d}
}

func (f *fixture) pay(client pricing.Client, amount int64) payment.Payment {
	return payment.Payment{
		ID:          uuid.New(),
		InvoiceID:   uuid.New(),
		ClientID:    client.ID,
		Amount:      amount,
		Currency:    "IDR",
		Method:      payment.MethodCash,
		CollectorID: &f.collectorID,
		ReceivedAt:  time.Now().UTC(),
	}
}

func TestLedger_Scenario(t *testing.T) {
	f := newFixture()
	l := f.ledger()

	a := clientOn(f.flat, nil)
	b := clientOn(f.big, pricing.FixedDiscount{Amount: 50_000})

	require.NoError(t, l.RecordFullPayment(a, f.pay(a, 150_000)))
	require.NoError(t, l.RecordPartialPayment(b, 100_000, f.pay(b, 100_000)))

	assert.Equal(t, []uuid.UUID{a.ID}, l.PaidFullClients())
	assert.Equal(t, map[uuid.UUID]int64{b.ID: 100_000}, l.PartialPayments())
	assert.Equal(t, int64(150_000), l.AmountFor(a.ID))
	assert.Equal(t, int64(100_000), l.AmountFor(b.ID))
	assert.Equal(t, int64(0), l.AmountFor(uuid.New()))
	assert.Equal(t, int64(250_000), l.TotalCollected())

	snap := l.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, EntryFull, snap.Entries[0].Kind)
	assert.Equal(t, EntryPartial, snap.Entries[1].Kind)
	assert.Equal(t, int64(250_000), snap.Total)
	assert.Empty(t, snap.Superseded)
}

func TestLedger_FullSupersedesPartial(t *testing.T) {
	f := newFixture()
	l := f.ledger()
	c := clientOn(f.flat, nil)

	first := f.pay(c, 40_000)
	require.NoError(t, l.RecordPartialPayment(c, 40_000, first))
	require.NoError(t, l.RecordFullPayment(c, f.pay(c, 150_000)))

	assert.Empty(t, l.PartialPayments(), "client must not stay partial once paid in full")
	assert.Equal(t, []uuid.UUID{c.ID}, l.PaidFullClients())
	assert.Equal(t, int64(150_000), l.TotalCollected(), "partial must not be counted on top of full")

	snap := l.Snapshot()
	require.Len(t, snap.Entries, 1)
	require.Len(t, snap.Superseded, 1)
	assert.Equal(t, first.ID, snap.Superseded[0].ID)
	assert.Len(t, l.Payments(), 2)
}

func TestLedger_PartialLastWriteWins(t *testing.T) {
	f := newFixture()
	l := f.ledger()
	c := clientOn(f.flat, nil)

	require.NoError(t, l.RecordPartialPayment(c, 10_000, f.pay(c, 10_000)))
	require.NoError(t, l.RecordPartialPayment(c, 70_000, f.pay(c, 70_000)))

	assert.Equal(t, int64(70_000), l.TotalCollected())
	assert.Equal(t, map[uuid.UUID]int64{c.ID: 70_000}, l.PartialPayments())
}

func TestLedger_Rejections(t *testing.T) {
	f := newFixture()
	c := clientOn(f.flat, nil)
	other := uuid.New()

	tests := []struct {
		name        string
		record      func(l *Ledger) error
		expectedErr error
	}{
		{
			name:        "Full payment must equal due",
			record:      func(l *Ledger) error { return l.RecordFullPayment(c, f.pay(c, 149_999)) },
			expectedErr: ErrAmountMismatch,
		},
		{
			name: "Partial amount must match payment",
			record: func(l *Ledger) error {
				return l.RecordPartialPayment(c, 10, f.pay(c, 20))
			},
			expectedErr: ErrAmountMismatch,
		},
		{
			name:        "Partial equal to due is not partial",
			record:      func(l *Ledger) error { return l.RecordPartialPayment(c, 150_000, f.pay(c, 150_000)) },
			expectedErr: ErrNotPartial,
		},
		{
			name: "Payment for a different client",
			record: func(l *Ledger) error {
				p := f.pay(c, 150_000)
				p.ClientID = uuid.New()
				return l.RecordFullPayment(c, p)
			},
			expectedErr: ErrClientMismatch,
		},
		{
			name: "Payment from another collector",
			record: func(l *Ledger) error {
				p := f.pay(c, 150_000)
				p.CollectorID = &other
				return l.RecordFullPayment(c, p)
			},
			expectedErr: ErrForeignPayment,
		},
		{
			name: "Same payment twice",
			record: func(l *Ledger) error {
				p := f.pay(c, 150_000)
				if err := l.RecordFullPayment(c, p); err != nil {
					return err
				}
				return l.RecordFullPayment(c, p)
			},
			expectedErr: ErrDuplicatePayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := f.ledger()
			err := tt.record(l)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

// For any sequence of records, total == sum over distinct clients and no
// client is both partial and full.
func TestLedger_ConsistencyUnderRandomSequences(t *testing.T) {
	f := newFixture()
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		l := f.ledger()
		clients := make([]pricing.Client, 6)
		for i := range clients {
			clients[i] = clientOn(f.flat, nil)
		}
		for step := 0; step < 40; step++ {
			c := clients[rng.Intn(len(clients))]
			if rng.Intn(2) == 0 {
				require.NoError(t, l.RecordFullPayment(c, f.pay(c, 150_000)))
			} else {
				amt := int64(1 + rng.Intn(149_999))
				require.NoError(t, l.RecordPartialPayment(c, amt, f.pay(c, amt)))
			}
		}

		partial := l.PartialPayments()
		var sum int64
		for _, c := range clients {
			sum += l.AmountFor(c.ID)
		}
		for _, id := range l.PaidFullClients() {
			_, both := partial[id]
			assert.False(t, both, "client %s is both partial and full", id)
		}
		assert.Equal(t, sum, l.TotalCollected())

		snap := l.Snapshot()
		var paid int64
		for _, e := range snap.Entries {
			paid += e.Payment.Amount
		}
		assert.Equal(t, snap.Total, paid, "backing payments must add up to the total")
	}
}

func TestLedger_SubmissionLock(t *testing.T) {
	f := newFixture()
	l := f.ledger()
	c := clientOn(f.flat, nil)
	p := f.pay(c, 150_000)
	require.NoError(t, l.RecordFullPayment(c, p))

	require.NoError(t, l.BeginSubmission("k1"))
	require.NoError(t, l.BeginSubmission("k1"), "same key may re-enter")
	assert.ErrorIs(t, l.BeginSubmission("k2"), ErrLedgerLocked)

	d := clientOn(f.flat, nil)
	assert.ErrorIs(t, l.RecordFullPayment(d, f.pay(d, 150_000)), ErrLedgerLocked)

	// rollback leaves everything in place
	l.Release("k1")
	assert.Equal(t, int64(150_000), l.TotalCollected())
	require.NoError(t, l.RecordFullPayment(d, f.pay(d, 150_000)))

	// commit removes only the submitted payments
	require.NoError(t, l.BeginSubmission("k3"))
	l.Settle("k3", []uuid.UUID{p.ID})
	assert.Equal(t, "", l.LockedBy())
	assert.Equal(t, int64(150_000), l.TotalCollected())
	assert.Equal(t, []uuid.UUID{d.ID}, l.PaidFullClients())
}

func TestLedger_ConcurrentRecords(t *testing.T) {
	f := newFixture()
	l := f.ledger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := clientOn(f.flat, nil)
			_ = l.RecordFullPayment(c, f.pay(c, 150_000))
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50*150_000), l.TotalCollected())
}
