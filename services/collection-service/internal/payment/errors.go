// services/collection-service/internal/payment/errors.go
package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidAmount   = errors.New("invalid payment amount")
	ErrInvalidMethod   = errors.New("invalid payment method")

	// ErrExceedsOutstanding means the payment is larger than what the invoice still owes.
	ErrExceedsOutstanding = errors.New("payment exceeds invoice outstanding amount")

	// ErrPaymentAlreadyDeposited protects "one payment, one deposit".
	ErrPaymentAlreadyDeposited = errors.New("payment already belongs to a deposit or was voided")
)
