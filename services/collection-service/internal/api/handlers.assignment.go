// services/collection-service/internal/api/handlers.assignment.go
package api

import (
	"strings"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/assignment"
	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

func (h *Handler) Assign(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}
	invoiceID, _ := uuid.Parse(req.InvoiceID)
	collectorID, _ := uuid.Parse(req.CollectorID)

	a, err := h.Assignments.Assign(c.UserContext(), actor, invoiceID, collectorID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, "assignment created", assignmentView(a))
}

// ListAssignments supports ?collector_id, ?deposit_id, ?status=a,b and
// ?page/&per_page. Collectors always see only their own.
func (h *Handler) ListAssignments(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	var q AssignmentQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if err := h.validate.Struct(q); err != nil {
		return validationError(c, err)
	}

	f := assignment.Filter{}
	if q.CollectorID != "" {
		id, _ := uuid.Parse(q.CollectorID)
		f.CollectorID = &id
	}
	if q.DepositID != "" {
		id, _ := uuid.Parse(q.DepositID)
		f.DepositID = &id
	}
	for _, s := range strings.Split(q.Status, ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.Statuses = append(f.Statuses, assignment.WorkflowStatus(s))
		}
	}
	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	f.Limit, f.Offset = perPage, (page-1)*perPage

	list, err := h.Assignments.List(c.UserContext(), actor, f)
	if err != nil {
		return err
	}
	views := make([]AssignmentView, 0, len(list))
	for i := range list {
		views = append(views, assignmentView(&list[i]))
	}
	return success(c, fiber.StatusOK, "assignments", fiber.Map{
		"items":    views,
		"page":     page,
		"per_page": perPage,
		"count":    len(views),
	})
}

func (h *Handler) GetAssignment(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	a, err := h.visibleAssignment(c, actor)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "assignment", assignmentView(a))
}

func (h *Handler) VisitSuccess(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid assignment id")
	}
	var req VisitSuccessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}
	a, err := h.Assignments.RecordVisitSuccess(c.UserContext(), actor, id, assignment.VisitReport{Notes: req.Notes, PhotoURL: req.PhotoURL})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "visit recorded", assignmentView(a))
}

func (h *Handler) VisitFailure(c *fiber.Ctx) error {
	actor, _ := actorFrom(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid assignment id")
	}
	var req VisitFailureRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}
	a, err := h.Assignments.RecordVisitFailure(c.UserContext(), actor, id, req.Reason)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "visit failure recorded", assignmentView(a))
}

// visibleAssignment hides other tenants' assignments, and other collectors'
// from a collector, behind a 404.
func (h *Handler) visibleAssignment(c *fiber.Ctx, actor auth.Actor) (*assignment.CollectorAssignment, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid assignment id")
	}
	a, err := h.Assignments.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if a.TenantID != actor.TenantID || (actor.Is(auth.RoleCollector) && a.CollectorID != actor.UserID) {
		return nil, assignment.ErrAssignmentNotFound
	}
	return a, nil
}
