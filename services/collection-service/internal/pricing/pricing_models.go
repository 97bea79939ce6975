// services/collection-service/internal/pricing/pricing_models.go
package pricing

import (
	"fmt"

	"github.com/google/uuid"
)

type PricingModel string

const (
	PricingFlat      PricingModel = "flat"
	PricingPerDevice PricingModel = "per_device"
)

// ServicePackage is immutable reference data. All prices are integer minor units
// (e.g. rupiah, cents). Floating point is never used for money.
type ServicePackage struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Name           string
	PricingModel   PricingModel
	PriceMonthly   int64 // used when PricingModel == flat
	PricePerDevice int64 // used when PricingModel == per_device
	Currency       string
}

// Client is read-only from this subsystem's perspective.
type Client struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Name             string
	ServicePackageID *uuid.UUID // nil means no package, nothing is owed
	DeviceCount      int
	Discount         Discount // nil means no discount
}

// Discount is a closed union: PercentDiscount or FixedDiscount.
// A nil Discount means none.
type Discount interface {
	isDiscount()
}

// PercentDiscount takes Percent (0..100) off the base amount.
type PercentDiscount struct {
	Percent int64
}

// FixedDiscount takes Amount minor units off the base amount, floored at zero.
type FixedDiscount struct {
	Amount int64
}

func (PercentDiscount) isDiscount() {}
func (FixedDiscount) isDiscount()   {}

const (
	DiscountKindPercent = "percent"
	DiscountKindFixed   = "fixed"
)

// NewDiscount builds a Discount from its stored (kind, value) form.
// An empty kind yields a nil Discount.
func NewDiscount(kind string, value int64) (Discount, error) {
	var d Discount
	switch kind {
	case "":
		return nil, nil
	case DiscountKindPercent:
		d = PercentDiscount{Percent: value}
	case DiscountKindFixed:
		d = FixedDiscount{Amount: value}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidDiscount, kind)
	}
	if err := ValidateDiscount(d); err != nil {
		return nil, err
	}
	return d, nil
}

// DiscountParts is the inverse of NewDiscount, used by stores.
func DiscountParts(d Discount) (kind string, value int64) {
	switch v := d.(type) {
	case PercentDiscount:
		return DiscountKindPercent, v.Percent
	case FixedDiscount:
		return DiscountKindFixed, v.Amount
	default:
		return "", 0
	}
}
