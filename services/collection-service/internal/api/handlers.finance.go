// services/collection-service/internal/api/handlers.finance.go
package api

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ConfirmDeposit settles a submitted deposit against its invoices.
func (h *Handler) ConfirmDeposit(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid deposit id")
	}
	s, err := h.Confirmer.Confirm(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "deposit confirmed", settlementView(s))
}

// SettlementReport downloads the confirmed deposits of [from, to] as XLSX.
// Both bounds are calendar days; the default is yesterday.
func (h *Handler) SettlementReport(c *fiber.Ctx) error {
	if h.Reports == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "reports are not configured")
	}
	actor, _ := actorFrom(c)
	var q ReportQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if err := h.validate.Struct(q); err != nil {
		return validationError(c, err)
	}

	now := h.Clock().In(h.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.Location)
	from, to := today.AddDate(0, 0, -1), today.AddDate(0, 0, -1)
	if q.From != "" {
		from, _ = time.ParseInLocation("2006-01-02", q.From, h.Location)
		to = from
	}
	if q.To != "" {
		to, _ = time.ParseInLocation("2006-01-02", q.To, h.Location)
	}
	if to.Before(from) {
		return fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
	}
	end := to.AddDate(0, 0, 1)

	var buf bytes.Buffer
	totals, err := h.Reports.WriteXLSX(c.UserContext(), &buf, actor.TenantID, from, end)
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("settlement_%s_%s.xlsx", from.Format("2006-01-02"), to.Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set("X-Deposit-Count", strconv.Itoa(totals.Deposits))
	return c.Send(buf.Bytes())
}
