// services/collection-service/internal/pricing/engine_test.go
package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPackage(price int64) ServicePackage {
	return ServicePackage{ID: uuid.New(), PricingModel: PricingFlat, PriceMonthly: price, Currency: "IDR"}
}

func perDevicePackage(price int64) ServicePackage {
	return ServicePackage{ID: uuid.New(), PricingModel: PricingPerDevice, PricePerDevice: price, Currency: "IDR"}
}

func clientOn(pkg ServicePackage, devices int, d Discount) Client {
	id := pkg.ID
	return Client{ID: uuid.New(), ServicePackageID: &id, DeviceCount: devices, Discount: d}
}

func TestComputeDue(t *testing.T) {
	flat := flatPackage(200_000)
	perDev := perDevicePackage(25_000)

	tests := []struct {
		name        string
		client      Client
		pkg         *ServicePackage
		expectedDue int64
		expectedErr error
	}{
		{
			name:        "No package owes nothing",
			client:      Client{ID: uuid.New()},
			expectedDue: 0,
		},
		{
			name:        "Flat without discount",
			client:      clientOn(flat, 3, nil),
			pkg:         &flat,
			expectedDue: 200_000,
		},
		{
			name:        "Flat with fixed discount",
			client:      clientOn(flat, 0, FixedDiscount{Amount: 50_000}),
			pkg:         &flat,
			expectedDue: 150_000,
		},
		{
			name:        "Fixed discount larger than base floors at zero",
			client:      clientOn(flat, 0, FixedDiscount{Amount: 999_999}),
			pkg:         &flat,
			expectedDue: 0,
		},
		{
			name:        "Per device multiplies device count",
			client:      clientOn(perDev, 4, nil),
			pkg:         &perDev,
			expectedDue: 100_000,
		},
		{
			name:        "Per device with zero devices bills one",
			client:      clientOn(perDev, 0, nil),
			pkg:         &perDev,
			expectedDue: 25_000,
		},
		{
			name:        "Percent discount on per device",
			client:      clientOn(perDev, 4, PercentDiscount{Percent: 20}),
			pkg:         &perDev,
			expectedDue: 80_000,
		},
		{
			name:        "Percent discount rounds the due amount up",
			client:      clientOn(flatPackage(999), 1, PercentDiscount{Percent: 33}),
			expectedDue: 999 - 329, // floor(999*33/100) = 329
		},
		{
			name:        "Hundred percent discount",
			client:      clientOn(flat, 0, PercentDiscount{Percent: 100}),
			pkg:         &flat,
			expectedDue: 0,
		},
		{
			name:        "Percent over hundred rejected",
			client:      clientOn(flat, 0, PercentDiscount{Percent: 120}),
			pkg:         &flat,
			expectedErr: ErrInvalidDiscount,
		},
		{
			name:        "Negative fixed discount rejected",
			client:      clientOn(flat, 0, FixedDiscount{Amount: -1}),
			pkg:         &flat,
			expectedErr: ErrInvalidDiscount,
		},
		{
			name:        "Package mismatch",
			client:      clientOn(flat, 0, nil),
			pkg:         &perDev,
			expectedErr: ErrPackageNotFound,
		},
		{
			name:        "Unknown pricing model",
			client:      clientOn(ServicePackage{ID: flat.ID, PricingModel: "yearly"}, 0, nil),
			pkg:         &ServicePackage{ID: flat.ID, PricingModel: "yearly"},
			expectedErr: ErrInvalidPackage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := tt.pkg
			if pkg == nil && tt.client.ServicePackageID != nil && tt.expectedErr == nil {
				// packages built inline in the table
				p := flatPackage(999)
				p.ID = *tt.client.ServicePackageID
				pkg = &p
			}
			due, err := ComputeDue(tt.client, pkg)
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedErr), "expected %v, got %v", tt.expectedErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedDue, due)
		})
	}
}

// n devices at price p with 20% off must be exactly 0.8*n*p, every time.
func TestComputeDue_PercentIsExact(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for _, p := range []int64{5, 55, 1_005, 12_345, 250_000, 1_000_005} {
			pkg := perDevicePackage(p)
			client := clientOn(pkg, n, PercentDiscount{Percent: 20})

			want := int64(n) * p * 4 / 5
			for i := 0; i < 3; i++ {
				due, err := ComputeDue(client, &pkg)
				require.NoError(t, err)
				require.Equal(t, want, due, "n=%d p=%d", n, p)
			}

			noDisc := clientOn(pkg, n, nil)
			due, err := ComputeDue(noDisc, &pkg)
			require.NoError(t, err)
			require.Equal(t, int64(n)*p, due)
		}
	}
}

func TestApplyDiscount_NoOverflowNearMax(t *testing.T) {
	base := int64(math.MaxInt64 - 7)
	due, err := ApplyDiscount(base, PercentDiscount{Percent: 50})
	require.NoError(t, err)
	assert.Greater(t, due, int64(0))
	assert.Equal(t, base-((base/100)*50+(base%100)*50/100), due)
}

func TestBaseAmount_Overflow(t *testing.T) {
	pkg := perDevicePackage(math.MaxInt64 / 2)
	_, err := BaseAmount(pkg, 3)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestNewDiscount(t *testing.T) {
	d, err := NewDiscount("", 0)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = NewDiscount(DiscountKindPercent, 15)
	require.NoError(t, err)
	assert.Equal(t, PercentDiscount{Percent: 15}, d)
	kind, value := DiscountParts(d)
	assert.Equal(t, DiscountKindPercent, kind)
	assert.Equal(t, int64(15), value)

	_, err = NewDiscount("bogus", 1)
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestCalculator_UsesCatalog(t *testing.T) {
	pkg := flatPackage(150_000)
	calc := NewCalculator(NewCatalog([]ServicePackage{pkg}))

	due, err := calc.ComputeDue(clientOn(pkg, 0, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), due)
	assert.Equal(t, "IDR", calc.Currency(clientOn(pkg, 0, nil)))

	orphan := clientOn(flatPackage(1), 0, nil)
	_, err = calc.ComputeDue(orphan)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}
