// services/collection-service/internal/api/views.go
package api

import (
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/collection"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/reconciliation"
	"github.com/google/uuid"
)

type PaymentView struct {
	ID         uuid.UUID `json:"id"`
	InvoiceID  uuid.UUID `json:"invoice_id"`
	ClientID   uuid.UUID `json:"client_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Method     string    `json:"method"`
	ReceivedAt time.Time `json:"received_at"`
}

func paymentView(p *payment.Payment) PaymentView {
	return PaymentView{
		ID:         p.ID,
		InvoiceID:  p.InvoiceID,
		ClientID:   p.ClientID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Method:     string(p.Method),
		ReceivedAt: p.ReceivedAt,
	}
}

type LedgerEntryView struct {
	ClientID  uuid.UUID `json:"client_id"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	PaymentID uuid.UUID `json:"payment_id"`
}

type LedgerView struct {
	CollectorID uuid.UUID         `json:"collector_id"`
	Day         string            `json:"day"`
	Total       int64             `json:"total"`
	Entries     []LedgerEntryView `json:"entries"`
	Locked      bool              `json:"locked"`
}

func ledgerView(l *collection.Ledger) LedgerView {
	snap := l.Snapshot()
	v := LedgerView{
		CollectorID: snap.CollectorID,
		Day:         snap.Day,
		Total:       snap.Total,
		Entries:     make([]LedgerEntryView, 0, len(snap.Entries)),
		Locked:      l.LockedBy() != "",
	}
	for _, e := range snap.Entries {
		v.Entries = append(v.Entries, LedgerEntryView{
			ClientID:  e.ClientID,
			Kind:      string(e.Kind),
			Amount:    e.Amount,
			PaymentID: e.Payment.ID,
		})
	}
	return v
}

type DepositView struct {
	ID             uuid.UUID   `json:"id"`
	CollectorID    uuid.UUID   `json:"collector_id"`
	Day            string      `json:"day"`
	Amount         int64       `json:"amount"`
	Currency       string      `json:"currency"`
	PaymentIDs     []uuid.UUID `json:"payment_ids"`
	InvoiceIDs     []uuid.UUID `json:"invoice_ids"`
	ProofURL       string      `json:"proof_url"`
	IdempotencyKey string      `json:"idempotency_key"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	Confirmed      bool        `json:"confirmed"`
	ConfirmedAt    *time.Time  `json:"confirmed_at,omitempty"`
	ConfirmedBy    *uuid.UUID  `json:"confirmed_by,omitempty"`
}

func depositView(b *deposit.DepositBatch) DepositView {
	return DepositView{
		ID:             b.ID,
		CollectorID:    b.CollectorID,
		Day:            b.Day,
		Amount:         b.Amount,
		Currency:       b.Currency,
		PaymentIDs:     b.PaymentIDs,
		InvoiceIDs:     b.InvoiceIDs,
		ProofURL:       b.ProofURL,
		IdempotencyKey: b.IdempotencyKey,
		SubmittedAt:    b.SubmittedAt,
		Confirmed:      b.Confirmed,
		ConfirmedAt:    b.ConfirmedAt,
		ConfirmedBy:    b.ConfirmedBy,
	}
}

type ConfirmationView struct {
	DepositID      uuid.UUID   `json:"deposit_id"`
	IdempotencyKey string      `json:"idempotency_key"`
	Amount         int64       `json:"amount"`
	AssignmentIDs  []uuid.UUID `json:"assignment_ids"`
	Replayed       bool        `json:"replayed"`
}

type AssignmentView struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	CollectorID   uuid.UUID  `json:"collector_id"`
	Status        string     `json:"workflow_status"`
	VisitNotes    *string    `json:"visit_notes,omitempty"`
	VisitPhotoURL *string    `json:"visit_photo_url,omitempty"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	VisitedAt     *time.Time `json:"visited_at,omitempty"`
	DepositID     *uuid.UUID `json:"deposit_id,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func assignmentView(a *assignment.CollectorAssignment) AssignmentView {
	return AssignmentView{
		ID:            a.ID,
		InvoiceID:     a.InvoiceID,
		CollectorID:   a.CollectorID,
		Status:        string(a.Status),
		VisitNotes:    a.VisitNotes,
		VisitPhotoURL: a.VisitPhotoURL,
		FailureReason: a.FailureReason,
		VisitedAt:     a.VisitedAt,
		DepositID:     a.DepositID,
		ConfirmedAt:   a.ConfirmedAt,
		CreatedAt:     a.CreatedAt,
	}
}

type InvoiceSettlementView struct {
	InvoiceID  uuid.UUID `json:"invoice_id"`
	Applied    int64     `json:"applied"`
	PaidAmount int64     `json:"paid_amount"`
	Total      int64     `json:"total_amount"`
	Status     string    `json:"status"`
}

type SettlementView struct {
	DepositID     uuid.UUID               `json:"deposit_id"`
	Amount        int64                   `json:"amount"`
	Currency      string                  `json:"currency"`
	ConfirmedAt   time.Time               `json:"confirmed_at"`
	ConfirmedBy   uuid.UUID               `json:"confirmed_by"`
	Invoices      []InvoiceSettlementView `json:"invoices"`
	AssignmentIDs []uuid.UUID             `json:"assignment_ids"`
}

func settlementView(s *reconciliation.Settlement) SettlementView {
	v := SettlementView{
		DepositID:     s.DepositID,
		Amount:        s.Amount,
		Currency:      s.Currency,
		ConfirmedAt:   s.ConfirmedAt,
		ConfirmedBy:   s.ConfirmedBy,
		Invoices:      make([]InvoiceSettlementView, 0, len(s.Invoices)),
		AssignmentIDs: s.AssignmentIDs,
	}
	for _, inv := range s.Invoices {
		v.Invoices = append(v.Invoices, InvoiceSettlementView{
			InvoiceID:  inv.InvoiceID,
			Applied:    inv.Applied,
			PaidAmount: inv.PaidAmount,
			Total:      inv.Total,
			Status:     string(inv.Status),
		})
	}
	return v
}
