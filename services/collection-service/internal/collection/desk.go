// services/collection-service/internal/collection/desk.go

package collection

import (
	"context"
	"fmt"
	"log"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/invoice"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/pricing"
	"github.com/google/uuid"
)

type ClientReader interface {
	GetClientByID(ctx context.Context, clientID uuid.UUID) (*pricing.Client, error)
}

type PaymentRecorder interface {
	Validate(ctx context.Context, req payment.RecordRequest) (*invoice.Invoice, error)
	RecordPayment(ctx context.Context, req payment.RecordRequest) (*payment.Payment, error)
}

// AssignmentGate rejects invoices whose active assignment is not a recorded
// visit by the collecting collector.
type AssignmentGate interface {
	CheckCollectable(ctx context.Context, collectorID uuid.UUID, invoiceIDs []uuid.UUID) error
}

// Desk records what a collector took from a client: it persists the payment
// and folds it into the collector's ledger. Every ledger rule is checked before
// the payment is written so a rejected entry never leaves an orphan payment.
type Desk struct {
	clients     ClientReader
	recorder    PaymentRecorder
	assignments AssignmentGate
}

func NewDesk(clients ClientReader, recorder PaymentRecorder) *Desk {
	return &Desk{clients: clients, recorder: recorder}
}

// WithAssignments makes the desk refuse invoices that are assigned but not
// yet visited, or assigned to another collector.
func (d *Desk) WithAssignments(gate AssignmentGate) *Desk {
	d.assignments = gate
	return d
}

// CollectFull records a full payment. A zero req.Amount means "the amount due".
func (d *Desk) CollectFull(ctx context.Context, ledger *Ledger, clientID uuid.UUID, req payment.RecordRequest) (*payment.Payment, error) {
	client, err := d.prepare(ctx, ledger, clientID, &req)
	if err != nil {
		return nil, err
	}
	if req.Amount == 0 {
		due, err := ledger.DueFor(*client)
		if err != nil {
			return nil, err
		}
		req.Amount = due
	}
	if _, err := ledger.CheckFull(*client, req.Amount); err != nil {
		return nil, err
	}
	if err := d.checkInvoice(ctx, client.ID, ledger.CollectorID(), req); err != nil {
		return nil, err
	}
	p, err := d.recorder.RecordPayment(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ledger.RecordFullPayment(*client, *p); err != nil {
		log.Printf("[WARN] Payment %s persisted but ledger rejected it: %v", p.ID, err)
		return nil, err
	}
	return p, nil
}

// CollectPartial records a partial payment of req.Amount.
func (d *Desk) CollectPartial(ctx context.Context, ledger *Ledger, clientID uuid.UUID, req payment.RecordRequest) (*payment.Payment, error) {
	client, err := d.prepare(ctx, ledger, clientID, &req)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckPartial(*client, req.Amount); err != nil {
		return nil, err
	}
	if err := d.checkInvoice(ctx, client.ID, ledger.CollectorID(), req); err != nil {
		return nil, err
	}
	p, err := d.recorder.RecordPayment(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ledger.RecordPartialPayment(*client, p.Amount, *p); err != nil {
		log.Printf("[WARN] Payment %s persisted but ledger rejected it: %v", p.ID, err)
		return nil, err
	}
	return p, nil
}

func (d *Desk) prepare(ctx context.Context, ledger *Ledger, clientID uuid.UUID, req *payment.RecordRequest) (*pricing.Client, error) {
	client, err := d.clients.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	if client.TenantID != ledger.TenantID() {
		return nil, pricing.ErrClientNotFound
	}
	collectorID := ledger.CollectorID()
	if req.CollectorID == nil {
		req.CollectorID = &collectorID
	}
	return client, nil
}

func (d *Desk) checkInvoice(ctx context.Context, clientID, collectorID uuid.UUID, req payment.RecordRequest) error {
	inv, err := d.recorder.Validate(ctx, req)
	if err != nil {
		return err
	}
	if inv.ClientID != clientID {
		return fmt.Errorf("%w: invoice %s belongs to client %s", ErrClientMismatch, inv.InvoiceID, inv.ClientID)
	}
	if d.assignments != nil {
		return d.assignments.CheckCollectable(ctx, collectorID, []uuid.UUID{req.InvoiceID})
	}
	return nil
}
