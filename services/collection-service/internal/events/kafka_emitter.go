// services/collection-service/internal/events/kafka_emitter.go
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/NaonWae12/RR-Net-sub002/shared/kafka"
)

// KafkaEmitter publishes collection domain events. Messages are keyed by
// deposit id so events of one deposit stay ordered.
type KafkaEmitter struct {
	publisher kafka.Publisher
}

func NewKafkaEmitter(publisher kafka.Publisher) *KafkaEmitter {
	return &KafkaEmitter{publisher: publisher}
}

func (e *KafkaEmitter) DepositSubmitted(ctx context.Context, b deposit.DepositBatch) error {
	if err := e.publisher.PublishEvent(ctx, b.ID.String(), EventDepositSubmitted, submittedPayload(b)); err != nil {
		return fmt.Errorf("publish %s: %w", EventDepositSubmitted, err)
	}
	return nil
}

// DepositConfirmed publishes deposit.confirmed and one invoice.paid per
// invoice the settlement closed.
func (e *KafkaEmitter) DepositConfirmed(ctx context.Context, s reconciliation.Settlement) error {
	key := s.DepositID.String()
	if err := e.publisher.PublishEvent(ctx, key, EventDepositConfirmed, confirmedPayload(s)); err != nil {
		return fmt.Errorf("publish %s: %w", EventDepositConfirmed, err)
	}

	var errs []error
	for _, inv := range s.Invoices {
		if inv.Status != invoice.InvoicePaid {
			continue
		}
		payload := InvoicePaidPayload{
			InvoiceID:  inv.InvoiceID,
			TenantID:   s.TenantID,
			DepositID:  s.DepositID,
			PaidAmount: inv.PaidAmount,
			Total:      inv.Total,
			PaidAt:     s.ConfirmedAt,
		}
		if err := e.publisher.PublishEvent(ctx, key, EventInvoicePaid, payload); err != nil {
			errs = append(errs, fmt.Errorf("publish %s for %s: %w", EventInvoicePaid, inv.InvoiceID, err))
		}
	}
	return errors.Join(errs...)
}
