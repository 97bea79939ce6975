// services/collection-service/internal/pricing/engine.go
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ValidatePackage checks a package before it is priced.
func ValidatePackage(pkg ServicePackage) error {
	switch pkg.PricingModel {
	case PricingFlat:
		if pkg.PriceMonthly < 0 {
			return fmt.Errorf("%w: negative monthly price %d", ErrInvalidPackage, pkg.PriceMonthly)
		}
	case PricingPerDevice:
		if pkg.PricePerDevice < 0 {
			return fmt.Errorf("%w: negative per-device price %d", ErrInvalidPackage, pkg.PricePerDevice)
		}
	default:
		return fmt.Errorf("%w: unknown pricing model %q", ErrInvalidPackage, pkg.PricingModel)
	}
	return nil
}

// ValidateDiscount checks the bounds of a discount. nil is valid.
func ValidateDiscount(d Discount) error {
	switch v := d.(type) {
	case nil:
		return nil
	case PercentDiscount:
		if v.Percent < 0 || v.Percent > 100 {
			return fmt.Errorf("%w: percent %d outside 0..100", ErrInvalidDiscount, v.Percent)
		}
	case FixedDiscount:
		if v.Amount < 0 {
			return fmt.Errorf("%w: negative fixed amount %d", ErrInvalidDiscount, v.Amount)
		}
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidDiscount, d)
	}
	return nil
}

// BaseAmount is the undiscounted monthly amount for a package and device count.
func BaseAmount(pkg ServicePackage, deviceCount int) (int64, error) {
	if err := ValidatePackage(pkg); err != nil {
		return 0, err
	}
	if pkg.PricingModel != PricingPerDevice {
		return pkg.PriceMonthly, nil
	}
	devices := int64(deviceCount)
	if devices < 1 {
		devices = 1
	}
	if pkg.PricePerDevice > 0 && devices > math.MaxInt64/pkg.PricePerDevice {
		return 0, fmt.Errorf("%w: %d x %d", ErrAmountOverflow, pkg.PricePerDevice, devices)
	}
	return pkg.PricePerDevice * devices, nil
}

// ApplyDiscount returns base minus the discount.
//
// Percent: the discount is floor(base*percent/100), computed as
// (base/100)*p + (base%100)*p/100 so it never overflows. The due amount
// therefore rounds up to the next minor unit, never down.
// Fixed: max(0, base-amount).
func ApplyDiscount(base int64, d Discount) (int64, error) {
	if err := ValidateDiscount(d); err != nil {
		return 0, err
	}
	switch v := d.(type) {
	case nil:
		return base, nil
	case PercentDiscount:
		off := (base/100)*v.Percent + (base%100)*v.Percent/100
		return base - off, nil
	case FixedDiscount:
		if v.Amount >= base {
			return 0, nil
		}
		return base - v.Amount, nil
	}
	// unreachable: ValidateDiscount rejects anything else
	return 0, ErrInvalidDiscount
}

// ComputeDue derives what a client owes for one billing period.
// A client without a package owes 0. pkg may be nil only in that case.
func ComputeDue(client Client, pkg *ServicePackage) (int64, error) {
	if client.ServicePackageID == nil {
		return 0, nil
	}
	if pkg == nil || pkg.ID != *client.ServicePackageID {
		return 0, fmt.Errorf("%w: %s", ErrPackageNotFound, client.ServicePackageID)
	}
	base, err := BaseAmount(*pkg, client.DeviceCount)
	if err != nil {
		return 0, err
	}
	return ApplyDiscount(base, client.Discount)
}

// Catalog is an in-memory snapshot of service packages, loaded once per
// collector session so ledger mutations never block on I/O.
type Catalog struct {
	packages map[uuid.UUID]ServicePackage
}

func NewCatalog(pkgs []ServicePackage) *Catalog {
	c := &Catalog{packages: make(map[uuid.UUID]ServicePackage, len(pkgs))}
	for _, p := range pkgs {
		c.packages[p.ID] = p
	}
	return c
}

func (c *Catalog) Package(id uuid.UUID) (ServicePackage, bool) {
	p, ok := c.packages[id]
	return p, ok
}

// Calculator prices clients against a Catalog.
type Calculator struct {
	catalog *Catalog
}

func NewCalculator(catalog *Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// ComputeDue looks the client's package up in the catalog and prices it.
func (c *Calculator) ComputeDue(client Client) (int64, error) {
	if client.ServicePackageID == nil {
		return 0, nil
	}
	pkg, ok := c.catalog.Package(*client.ServicePackageID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPackageNotFound, client.ServicePackageID)
	}
	due, err := ComputeDue(client, &pkg)
	if err != nil && !errors.Is(err, ErrPackageNotFound) {
		return 0, fmt.Errorf("client %s: %w", client.ID, err)
	}
	return due, err
}

// Currency reports the package currency of a client, or "" when there is none.
func (c *Calculator) Currency(client Client) string {
	if client.ServicePackageID == nil {
		return ""
	}
	pkg, ok := c.catalog.Package(*client.ServicePackageID)
	if !ok {
		return ""
	}
	return pkg.Currency
}
