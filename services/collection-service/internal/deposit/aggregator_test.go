// services/collection-service/internal/deposit/aggregator_test.go
package deposit_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/collection"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	mock_deposit "github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit/mocks"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var submitTime = time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)

type deps struct {
	deposits    *mock_deposit.MockDepositStore
	payments    *mock_deposit.MockPaymentLinker
	assignments *mock_deposit.MockAssignmentApplier
	proofs      *mock_deposit.MockProofStore
	tx          *mock_deposit.MockTxManager
	audit       *mock_deposit.MockAuditLog
	notifier    *mock_deposit.MockSubmitNotifier
	agg         *deposit.Aggregator
}

func newDeps(ctrl *gomock.Controller) *deps {
	d := &deps{
		deposits:    mock_deposit.NewMockDepositStore(ctrl),
		payments:    mock_deposit.NewMockPaymentLinker(ctrl),
		assignments: mock_deposit.NewMockAssignmentApplier(ctrl),
		proofs:      mock_deposit.NewMockProofStore(ctrl),
		tx:          mock_deposit.NewMockTxManager(ctrl),
		audit:       mock_deposit.NewMockAuditLog(ctrl),
		notifier:    mock_deposit.NewMockSubmitNotifier(ctrl),
	}
	d.agg = deposit.NewAggregator(d.deposits, d.payments, d.assignments, d.proofs, d.tx, d.audit).
		WithNotifier(d.notifier).
		WithClock(func() time.Time { return submitTime })
	return d
}

// runTx makes the mocked transaction manager execute the callback.
func (d *deps) runTx() *gomock.Call {
	return d.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) })
}

// collectorDay is the scenario ledger: A paid 150,000 in full, B paid 100,000
// of the 150,000 due after a fixed 50,000 discount.
type collectorDay struct {
	ledger   *collection.Ledger
	a, b     pricing.Client
	payA     payment.Payment
	payB     payment.Payment
	invoiceA uuid.UUID
	invoiceB uuid.UUID
}

func newCollectorDay(t *testing.T) *collectorDay {
	t.Helper()
	flat := pricing.ServicePackage{ID: uuid.New(), PricingModel: pricing.PricingFlat, PriceMonthly: 150_000, Currency: "IDR"}
	big := pricing.ServicePackage{ID: uuid.New(), PricingModel: pricing.PricingFlat, PriceMonthly: 200_000, Currency: "IDR"}
	calc := pricing.NewCalculator(pricing.NewCatalog([]pricing.ServicePackage{flat, big}))
	collectorID := uuid.New()

	cd := &collectorDay{
		ledger:   collection.NewLedger(uuid.New(), collectorID, "2026-03-14", calc),
		a:        pricing.Client{ID: uuid.New(), ServicePackageID: &flat.ID},
		b:        pricing.Client{ID: uuid.New(), ServicePackageID: &big.ID, Discount: pricing.FixedDiscount{Amount: 50_000}},
		invoiceA: uuid.New(),
		invoiceB: uuid.New(),
	}
	cd.payA = cd.pay(cd.a, cd.invoiceA, 150_000)
	cd.payB = cd.pay(cd.b, cd.invoiceB, 100_000)
	require.NoError(t, cd.ledger.RecordFullPayment(cd.a, cd.payA))
	require.NoError(t, cd.ledger.RecordPartialPayment(cd.b, 100_000, cd.payB))
	return cd
}

func (cd *collectorDay) pay(c pricing.Client, invoiceID uuid.UUID, amount int64) payment.Payment {
	collectorID := cd.ledger.CollectorID()
	return payment.Payment{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ClientID:    c.ID,
		Amount:      amount,
		Currency:    "IDR",
		Method:      payment.MethodCash,
		CollectorID: &collectorID,
	}
}

func slip() *deposit.Attachment {
	body := []byte("%PDF-1.7 bank slip")
	return &deposit.Attachment{Filename: "slip.pdf", ContentType: "application/pdf", Size: int64(len(body)), Body: bytes.NewReader(body)}
}

// expectCommit wires every call of a clean submit.
func (d *deps) expectCommit(cd *collectorDay, assignmentIDs []uuid.UUID) {
	d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/deposits/slip.pdf", nil)
	d.runTx()
	d.deposits.EXPECT().CreateDeposit(gomock.Any(), gomock.Any()).Return(nil)
	d.payments.EXPECT().AttachToDeposit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.assignments.EXPECT().
		ApplyDeposit(gomock.Any(), cd.ledger.CollectorID(), []uuid.UUID{cd.invoiceA, cd.invoiceB}, gomock.Any()).
		Return(assignmentIDs, nil)
	d.audit.EXPECT().AppendAuditEvent(gomock.Any(), gomock.Any()).Return(nil)
	d.notifier.EXPECT().DepositSubmitted(gomock.Any(), gomock.Any()).Return(nil)
}

func TestAggregator_BuildDeposit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name          string
		emptyLedger   bool
		proof         *deposit.Attachment
		expectedError error
	}{
		{name: "Valid deposit", proof: slip()},
		{name: "Empty ledger", emptyLedger: true, proof: slip(), expectedError: deposit.ErrEmptyDeposit},
		{name: "Missing proof", proof: nil, expectedError: deposit.ErrMissingProof},
		{
			name:          "Proof of a forbidden type",
			proof:         &deposit.Attachment{Filename: "slip.gif", ContentType: "image/gif", Size: 10, Body: bytes.NewReader(nil)},
			expectedError: deposit.ErrInvalidAttachment,
		},
		{
			name:          "Proof over 10 MB",
			proof:         &deposit.Attachment{Filename: "slip.png", ContentType: "image/png", Size: deposit.DefaultMaxProofBytes + 1, Body: bytes.NewReader(nil)},
			expectedError: deposit.ErrInvalidAttachment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1. SETUP
			d := newDeps(ctrl)
			cd := newCollectorDay(t)
			ledger := cd.ledger
			if tt.emptyLedger {
				ledger = collection.NewLedger(uuid.New(), uuid.New(), "2026-03-14", nil)
			}

			// 2. EXECUTE
			batch, err := d.agg.BuildDeposit(ledger, tt.proof)

			// 3. ASSERT
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "expected %v, got %v", tt.expectedError, err)
				assert.Nil(t, batch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ledger.TotalCollected(), batch.Amount)
			assert.Equal(t, int64(250_000), batch.Amount)
			assert.ElementsMatch(t, []uuid.UUID{cd.a.ID, cd.b.ID}, batch.ClientIDs)
			assert.ElementsMatch(t, []uuid.UUID{cd.payA.ID, cd.payB.ID}, batch.PaymentIDs)
			assert.Equal(t, "IDR", batch.Currency)
			assert.Equal(t, deposit.IdempotencyKey(batch.PaymentIDs), batch.IdempotencyKey)
			assert.Empty(t, batch.VoidedPaymentIDs)
		})
	}
}

func TestAggregator_Submit_Scenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// 1. SETUP
	d := newDeps(ctrl)
	cd := newCollectorDay(t)
	assignmentIDs := []uuid.UUID{uuid.New(), uuid.New()}
	d.expectCommit(cd, assignmentIDs)

	batch, err := d.agg.BuildDeposit(cd.ledger, slip())
	require.NoError(t, err)

	// 2. EXECUTE
	conf, err := d.agg.Submit(context.Background(), batch, cd.ledger)

	// 3. ASSERT
	require.NoError(t, err)
	assert.Equal(t, batch.ID, conf.DepositID)
	assert.Equal(t, int64(250_000), conf.Amount)
	assert.Equal(t, assignmentIDs, conf.AssignmentIDs)
	assert.False(t, conf.Replayed)
	assert.Equal(t, submitTime, batch.SubmittedAt)
	assert.Equal(t, "/uploads/deposits/slip.pdf", batch.ProofURL)

	assert.True(t, cd.ledger.IsEmpty(), "ledger is cleared after a successful submit")
	assert.Equal(t, "", cd.ledger.LockedBy())

	// single shot: the same batch cannot be submitted again
	_, err = d.agg.Submit(context.Background(), batch, cd.ledger)
	assert.ErrorIs(t, err, deposit.ErrAlreadySubmitted)
}

func TestAggregator_Submit_FailureKeepsLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name          string
		setup         func(d *deps)
		expectedError error
	}{
		{
			name: "Proof storage down",
			setup: func(d *deps) {
				d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("bucket unavailable"))
			},
			expectedError: deposit.ErrTransient,
		},
		{
			name: "Payment already deposited elsewhere",
			setup: func(d *deps) {
				d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("/p.pdf", nil)
				d.runTx()
				d.deposits.EXPECT().CreateDeposit(gomock.Any(), gomock.Any()).Return(nil)
				d.payments.EXPECT().AttachToDeposit(gomock.Any(), gomock.Any(), gomock.Any()).Return(payment.ErrPaymentAlreadyDeposited)
			},
			expectedError: payment.ErrPaymentAlreadyDeposited,
		},
		{
			name: "Assignment update fails",
			setup: func(d *deps) {
				d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("/p.pdf", nil)
				d.runTx()
				d.deposits.EXPECT().CreateDeposit(gomock.Any(), gomock.Any()).Return(nil)
				d.payments.EXPECT().AttachToDeposit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.assignments.EXPECT().ApplyDeposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, assignment.ErrStaleStatus)
			},
			expectedError: assignment.ErrStaleStatus,
		},
		{
			name: "Batch invoice has an unvisited assignment",
			setup: func(d *deps) {
				d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("/p.pdf", nil)
				d.runTx()
				d.deposits.EXPECT().CreateDeposit(gomock.Any(), gomock.Any()).Return(nil)
				d.payments.EXPECT().AttachToDeposit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.assignments.EXPECT().ApplyDeposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, assignment.ErrInvalidTransition)
			},
			expectedError: assignment.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1. SETUP
			d := newDeps(ctrl)
			cd := newCollectorDay(t)
			tt.setup(d)
			batch, err := d.agg.BuildDeposit(cd.ledger, slip())
			require.NoError(t, err)

			// 2. EXECUTE
			_, err = d.agg.Submit(context.Background(), batch, cd.ledger)

			// 3. ASSERT
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectedError), "expected %v, got %v", tt.expectedError, err)
			assert.Equal(t, int64(250_000), cd.ledger.TotalCollected(), "ledger must be left intact")
			assert.Equal(t, "", cd.ledger.LockedBy(), "a clean failure rolls the ledger back")
			assert.Equal(t, 0, d.agg.Pending())
		})
	}
}

func TestAggregator_Submit_AmbiguousThenReplayed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(ctrl)
	cd := newCollectorDay(t)
	batch, err := d.agg.BuildDeposit(cd.ledger, slip())
	require.NoError(t, err)

	// first attempt: the commit times out, outcome unknown
	d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("/p.pdf", nil)
	d.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(fmt.Errorf("commit: %w", context.DeadlineExceeded))
	d.deposits.EXPECT().GetDepositByIdempotencyKey(gomock.Any(), batch.IdempotencyKey).Return(nil, errors.New("connection reset"))

	_, err = d.agg.Submit(context.Background(), batch, cd.ledger)
	require.ErrorIs(t, err, deposit.ErrTransient)
	assert.Equal(t, batch.IdempotencyKey, cd.ledger.LockedBy(), "ledger stays locked until the outcome is known")
	assert.Equal(t, 1, d.agg.Pending())

	c := pricing.Client{ID: uuid.New()}
	assert.ErrorIs(t, cd.ledger.RecordFullPayment(c, cd.pay(c, uuid.New(), 0)), collection.ErrLedgerLocked)

	// retry: the deposit had committed, so it is re-read, not re-created
	stored := *batch
	d.deposits.EXPECT().GetDepositByIdempotencyKey(gomock.Any(), batch.IdempotencyKey).Return(&stored, nil)

	conf, err := d.agg.Submit(context.Background(), batch, cd.ledger)
	require.NoError(t, err)
	assert.True(t, conf.Replayed)
	assert.Equal(t, batch.ID, conf.DepositID)
	assert.True(t, cd.ledger.IsEmpty())
	assert.Equal(t, 0, d.agg.Pending())
}

func TestAggregator_ResolvePending_NotCommitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(ctrl)
	cd := newCollectorDay(t)
	batch, err := d.agg.BuildDeposit(cd.ledger, slip())
	require.NoError(t, err)

	d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("/p.pdf", nil)
	d.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded)
	d.deposits.EXPECT().GetDepositByIdempotencyKey(gomock.Any(), batch.IdempotencyKey).Return(nil, errors.New("connection reset"))
	_, err = d.agg.Submit(context.Background(), batch, cd.ledger)
	require.ErrorIs(t, err, deposit.ErrTransient)
	require.Equal(t, 1, d.agg.Pending())

	d.deposits.EXPECT().GetDepositByIdempotencyKey(gomock.Any(), batch.IdempotencyKey).Return(nil, deposit.ErrDepositNotFound)

	n, err := d.agg.ResolvePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, d.agg.Pending())
	assert.Equal(t, "", cd.ledger.LockedBy())
	assert.Equal(t, int64(250_000), cd.ledger.TotalCollected(), "nothing was deposited, nothing is lost")
}

func TestAggregator_Submit_AmbiguousSettledAtOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		committed bool
	}{
		{name: "Commit had landed", committed: true},
		{name: "Commit never landed", committed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 1. SETUP
			d := newDeps(ctrl)
			cd := newCollectorDay(t)
			batch, err := d.agg.BuildDeposit(cd.ledger, slip())
			require.NoError(t, err)

			d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("/p.pdf", nil)
			d.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(fmt.Errorf("commit: %w", context.DeadlineExceeded))
			if tt.committed {
				stored := *batch
				d.deposits.EXPECT().GetDepositByIdempotencyKey(gomock.Any(), batch.IdempotencyKey).Return(&stored, nil)
				d.notifier.EXPECT().DepositSubmitted(gomock.Any(), gomock.Any()).Return(nil)
			} else {
				d.deposits.EXPECT().GetDepositByIdempotencyKey(gomock.Any(), batch.IdempotencyKey).Return(nil, deposit.ErrDepositNotFound)
			}

			// 2. EXECUTE
			conf, err := d.agg.Submit(context.Background(), batch, cd.ledger)

			// 3. ASSERT
			assert.Equal(t, 0, d.agg.Pending(), "nothing is left for the reconciler")
			assert.Equal(t, "", cd.ledger.LockedBy(), "the collector can keep recording")
			if tt.committed {
				require.NoError(t, err)
				assert.Equal(t, batch.ID, conf.DepositID)
				assert.True(t, cd.ledger.IsEmpty())
				return
			}
			assert.ErrorIs(t, err, deposit.ErrTransient)
			assert.Equal(t, int64(250_000), cd.ledger.TotalCollected())
		})
	}
}

func TestAggregator_Submit_ServerSideDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(ctrl)
	cd := newCollectorDay(t)
	batch, err := d.agg.BuildDeposit(cd.ledger, slip())
	require.NoError(t, err)

	existing := *batch
	existing.ID = uuid.New()
	d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("/p.pdf", nil)
	d.runTx()
	d.deposits.EXPECT().CreateDeposit(gomock.Any(), gomock.Any()).Return(deposit.ErrDuplicateDeposit)
	d.deposits.EXPECT().GetDepositByIdempotencyKey(gomock.Any(), batch.IdempotencyKey).Return(&existing, nil)
	// no DepositSubmitted: nothing new was created

	conf, err := d.agg.Submit(context.Background(), batch, cd.ledger)
	require.NoError(t, err)
	assert.True(t, conf.Replayed)
	assert.Equal(t, existing.ID, conf.DepositID)
	assert.True(t, cd.ledger.IsEmpty())
}

func TestAggregator_Submit_ConcurrentCallRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(ctrl)
	cd := newCollectorDay(t)
	batch, err := d.agg.BuildDeposit(cd.ledger, slip())
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	d.proofs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, key string, a deposit.Attachment) (string, error) {
			close(entered)
			<-release
			return "/p.pdf", nil
		})
	d.runTx()
	d.deposits.EXPECT().CreateDeposit(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	d.payments.EXPECT().AttachToDeposit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.assignments.EXPECT().ApplyDeposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	d.audit.EXPECT().AppendAuditEvent(gomock.Any(), gomock.Any()).Return(nil)
	d.notifier.EXPECT().DepositSubmitted(gomock.Any(), gomock.Any()).Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := d.agg.Submit(context.Background(), batch, cd.ledger)
		done <- err
	}()

	<-entered
	_, err = d.agg.Submit(context.Background(), batch, cd.ledger)
	assert.ErrorIs(t, err, deposit.ErrSubmissionInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestAggregator_Submit_StaleBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(ctrl)
	cd := newCollectorDay(t)
	batch, err := d.agg.BuildDeposit(cd.ledger, slip())
	require.NoError(t, err)

	// the collector upgrades B to a full payment after building
	require.NoError(t, cd.ledger.RecordFullPayment(cd.b, cd.pay(cd.b, cd.invoiceB, 150_000)))

	_, err = d.agg.Submit(context.Background(), batch, cd.ledger)
	assert.ErrorIs(t, err, deposit.ErrStaleBatch)
	assert.Equal(t, "", cd.ledger.LockedBy())
}

func TestAggregator_Submit_VoidsSupersededPayments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := newDeps(ctrl)
	cd := newCollectorDay(t)
	full := cd.pay(cd.b, cd.invoiceB, 150_000)
	require.NoError(t, cd.ledger.RecordFullPayment(cd.b, full))

	batch, err := d.agg.BuildDeposit(cd.ledger, slip())
	require.NoError(t, err)
	assert.Equal(t, int64(300_000), batch.Amount)
	assert.Equal(t, []uuid.UUID{cd.payB.ID}, batch.VoidedPaymentIDs)
	assert.NotContains(t, batch.PaymentIDs, cd.payB.ID)

	d.expectCommit(cd, nil)
	d.payments.EXPECT().VoidPayments(gomock.Any(), []uuid.UUID{cd.payB.ID}, gomock.Any()).Return(nil)

	_, err = d.agg.Submit(context.Background(), batch, cd.ledger)
	require.NoError(t, err)
	assert.True(t, cd.ledger.IsEmpty(), "superseded payments leave the ledger with the deposit")
}

func TestIdempotencyKey_OrderIndependent(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	assert.Equal(t, deposit.IdempotencyKey([]uuid.UUID{a, b, c}), deposit.IdempotencyKey([]uuid.UUID{c, a, b}))
	assert.NotEqual(t, deposit.IdempotencyKey([]uuid.UUID{a, b}), deposit.IdempotencyKey([]uuid.UUID{a, c}))
	assert.Regexp(t, `^dep_[0-9a-f]{64}$`, deposit.IdempotencyKey([]uuid.UUID{a}))
}
