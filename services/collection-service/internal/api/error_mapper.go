// services/collection-service/internal/api/error_mapper.go
package api

import (
	"errors"
	"log"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/collection"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/gofiber/fiber/v2"
)

type errorClass struct {
	status int
	errs   []error
}

// Order matters: the first class holding a matching sentinel wins.
var errorClasses = []errorClass{
	{fiber.StatusUnauthorized, []error{auth.ErrUnauthenticated}},
	{fiber.StatusForbidden, []error{auth.ErrForbidden, collection.ErrForeignPayment}},
	{fiber.StatusNotFound, []error{
		deposit.ErrDepositNotFound,
		assignment.ErrAssignmentNotFound,
		invoice.ErrInvoiceNotFound,
		payment.ErrPaymentNotFound,
		pricing.ErrClientNotFound,
		pricing.ErrPackageNotFound,
	}},
	{fiber.StatusConflict, []error{
		deposit.ErrAlreadySubmitted,
		deposit.ErrSubmissionInFlight,
		deposit.ErrStaleBatch,
		deposit.ErrAlreadyConfirmed,
		collection.ErrLedgerLocked,
		collection.ErrDuplicatePayment,
		assignment.ErrInvalidTransition,
		assignment.ErrStaleStatus,
		assignment.ErrActiveAssignmentExists,
		assignment.ErrFieldImmutable,
		invoice.ErrInvoiceNotPayable,
		reconciliation.ErrOverpayment,
		reconciliation.ErrBatchIntegrity,
		payment.ErrPaymentAlreadyDeposited,
	}},
	{fiber.StatusUnprocessableEntity, []error{
		deposit.ErrEmptyDeposit,
		deposit.ErrMissingProof,
		deposit.ErrInvalidAttachment,
		deposit.ErrMixedCurrency,
		collection.ErrAmountMismatch,
		collection.ErrNotPartial,
		collection.ErrClientMismatch,
		payment.ErrInvalidAmount,
		payment.ErrInvalidMethod,
		payment.ErrExceedsOutstanding,
		assignment.ErrIncompleteVisit,
		assignment.ErrReasonRequired,
		pricing.ErrInvalidPackage,
		pricing.ErrInvalidDiscount,
		pricing.ErrAmountOverflow,
	}},
	{fiber.StatusServiceUnavailable, []error{deposit.ErrTransient}},
}

// MapError translates a domain error into a status and a client-safe message.
// Unknown errors become a bare 500; their text never leaves the process.
func MapError(err error) (int, string) {
	for _, class := range errorClasses {
		for _, sentinel := range class.errs {
			if errors.Is(err, sentinel) {
				return class.status, err.Error()
			}
		}
	}
	return fiber.StatusInternalServerError, "internal error"
}

// errorDetails exposes structured context for the errors that carry it.
func errorDetails(err error) interface{} {
	var over *reconciliation.OverpaymentError
	if errors.As(err, &over) {
		return fiber.Map{
			"invoice_id": over.InvoiceID,
			"total":      over.Total,
			"paid":       over.Paid,
			"applying":   over.Applying,
		}
	}
	var att *deposit.AttachmentError
	if errors.As(err, &att) {
		return fiber.Map{att.Field: att.Reason}
	}
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return errorJSON(c, fe.Code, fe.Message, nil)
	}
	status, msg := MapError(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return errorJSON(c, status, msg, errorDetails(err))
}
