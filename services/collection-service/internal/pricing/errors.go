// services/collection-service/internal/pricing/errors.go
package pricing

import "errors"

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrPackageNotFound = errors.New("service package not found")

	// ErrInvalidPackage covers unknown pricing models and negative prices.
	ErrInvalidPackage = errors.New("invalid service package")

	// ErrInvalidDiscount covers percent outside 0..100 and negative fixed amounts.
	ErrInvalidDiscount = errors.New("invalid discount")

	// ErrAmountOverflow is returned when price x devices does not fit in int64.
	ErrAmountOverflow = errors.New("amount overflows int64 minor units")
)
