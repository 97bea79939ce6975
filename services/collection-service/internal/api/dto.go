// services/collection-service/internal/api/dto.go
package api

type CollectPaymentRequest struct {
	ClientID  string `json:"client_id" validate:"required,uuid"`
	InvoiceID string `json:"invoice_id" validate:"required,uuid"`
	Kind      string `json:"kind" validate:"required,oneof=full partial"`
	// Amount may be omitted for a full payment; it then defaults to the amount due.
	Amount int64  `json:"amount" validate:"gte=0,required_if=Kind partial"`
	Method string `json:"method" validate:"omitempty,oneof=cash bank_transfer e_wallet"`
}

type AssignRequest struct {
	InvoiceID   string `json:"invoice_id" validate:"required,uuid"`
	CollectorID string `json:"collector_id" validate:"required,uuid"`
}

type VisitSuccessRequest struct {
	Notes    string `json:"notes" validate:"required,max=2000"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url,max=1024"`
}

type VisitFailureRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type DayQuery struct {
	Day string `query:"day" form:"day" validate:"omitempty,datetime=2006-01-02"`
}

type AssignmentQuery struct {
	CollectorID string `query:"collector_id" validate:"omitempty,uuid"`
	DepositID   string `query:"deposit_id" validate:"omitempty,uuid"`
	Status      string `query:"status"`
	Page        int    `query:"page" validate:"gte=0"`
	PerPage     int    `query:"per_page" validate:"gte=0,lte=200"`
}

type ReportQuery struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}
