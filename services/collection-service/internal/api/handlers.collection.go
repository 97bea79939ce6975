// services/collection-service/internal/api/handlers.collection.go
package api

import (
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/collection"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetLedger returns the collector's ledger for ?day= (default today).
func (h *Handler) GetLedger(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	var q DayQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if err := h.validate.Struct(q); err != nil {
		return validationError(c, err)
	}
	day := h.dayOr(q.Day)

	ledger, ok := h.Ledgers.Get(actor.UserID, day)
	if !ok {
		return success(c, fiber.StatusOK, "ledger is empty", LedgerView{CollectorID: actor.UserID, Day: day, Entries: []LedgerEntryView{}})
	}
	return success(c, fiber.StatusOK, "ledger", ledgerView(ledger))
}

// CollectPayment records a full or partial payment into today's ledger.
func (h *Handler) CollectPayment(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	var req CollectPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client_id")
	}
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice_id")
	}
	method := payment.Method(req.Method)
	if method == "" {
		method = payment.MethodCash
	}

	ctx := c.UserContext()
	ledger, err := h.Ledgers.Open(ctx, actor.TenantID, actor.UserID, h.today())
	if err != nil {
		return err
	}
	record := payment.RecordRequest{InvoiceID: invoiceID, Amount: req.Amount, Method: method}

	var p *payment.Payment
	if req.Kind == string(collection.EntryPartial) {
		p, err = h.Desk.CollectPartial(ctx, ledger, clientID, record)
	} else {
		p, err = h.Desk.CollectFull(ctx, ledger, clientID, record)
	}
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, "payment recorded", fiber.Map{
		"payment": paymentView(p),
		"ledger":  ledgerView(ledger),
	})
}

// SubmitDeposit turns the ledger into a deposit. The proof arrives as the
// multipart file field "proof"; an optional "day" form field selects an
// earlier ledger.
func (h *Handler) SubmitDeposit(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	q := DayQuery{Day: c.FormValue("day")}
	if err := h.validate.Struct(q); err != nil {
		return validationError(c, err)
	}
	day := h.dayOr(q.Day)

	fh, err := c.FormFile("proof")
	if err != nil {
		return deposit.ErrMissingProof
	}
	file, err := fh.Open()
	if err != nil {
		return &deposit.AttachmentError{Field: "proof", Reason: "could not be read"}
	}
	defer file.Close()

	ledger, ok := h.Ledgers.Get(actor.UserID, day)
	if !ok {
		return deposit.ErrEmptyDeposit
	}
	proof := &deposit.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        file,
	}
	batch, err := h.Deposits.BuildDeposit(ledger, proof)
	if err != nil {
		return err
	}
	conf, err := h.Deposits.Submit(c.UserContext(), batch, ledger)
	if err != nil {
		return err
	}

	status, msg := fiber.StatusCreated, "deposit submitted"
	if conf.Replayed {
		status, msg = fiber.StatusOK, "deposit was already submitted"
	}
	return success(c, status, msg, ConfirmationView{
		DepositID:      conf.DepositID,
		IdempotencyKey: conf.IdempotencyKey,
		Amount:         conf.Amount,
		AssignmentIDs:  conf.AssignmentIDs,
		Replayed:       conf.Replayed,
	})
}

// GetDeposit is visible to finance of the tenant and to the collector who made it.
func (h *Handler) GetDeposit(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid deposit id")
	}
	b, err := h.Deposits.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	if b.TenantID != actor.TenantID || (actor.Is(auth.RoleCollector) && b.CollectorID != actor.UserID) {
		return deposit.ErrDepositNotFound
	}
	return success(c, fiber.StatusOK, "deposit", depositView(b))
}

func (h *Handler) today() string {
	return collection.DayOf(h.Clock(), h.Location)
}

func (h *Handler) dayOr(day string) string {
	if day == "" {
		return h.today()
	}
	return day
}
