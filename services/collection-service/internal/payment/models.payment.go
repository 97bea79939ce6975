// services/collection-service/internal/payment/models.payment.go
package payment

import (
	"time"

	"github.com/google/uuid"
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodEWallet      Method = "e_wallet"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodEWallet:
		return true
	}
	return false
}

// Payment is the append-only record of money received. Once created its
// monetary fields never change. DepositID and VoidedAt are linkage written by
// the deposit flow exactly once.
type Payment struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	InvoiceID   uuid.UUID
	ClientID    uuid.UUID
	Amount      int64 // minor units
	Currency    string
	Method      Method
	CollectorID *uuid.UUID // nil when paid at the counter
	ReceivedAt  time.Time
	CreatedAt   time.Time

	DepositID *uuid.UUID
	VoidedAt  *time.Time
}

// RecordRequest is the input of the payment recording API.
type RecordRequest struct {
	InvoiceID   uuid.UUID
	Amount      int64
	Method      Method
	CollectorID *uuid.UUID
	ReceivedAt  time.Time // zero means now
}
