// services/collection-service/internal/api/server.go
package api

import (
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Deps struct {
	Resolver    ActorResolver
	Ledgers     LedgerRegistry
	Desk        PaymentDesk
	Deposits    DepositSubmitter
	Assignments AssignmentService
	Confirmer   DepositConfirmer
	Reports     SettlementReporter // nil disables the report endpoint

	// Location decides the ledger day of a request.
	Location      *time.Location
	MaxProofBytes int64
	Clock         func() time.Time
}

type Handler struct {
	Deps
	validate *validator.Validate
}

func NewHandler(d Deps) *Handler {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &Handler{Deps: d, validate: validator.New()}
}

// NewServer builds the fiber app with every route mounted.
func NewServer(d Deps) *fiber.App {
	h := NewHandler(d)

	bodyLimit := 4 << 20
	if d.MaxProofBytes > 0 {
		// proof plus the multipart envelope
		bodyLimit = int(d.MaxProofBytes) + 1<<20
	}
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})
	app.Use(RequestLogger())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	v1 := app.Group("/api/v1", RequireActor(d.Resolver))

	collector := v1.Group("/collector", RequireRole(auth.RoleCollector))
	collector.Get("/ledger", h.GetLedger)
	collector.Post("/ledger/payments", h.CollectPayment)
	collector.Post("/deposits", h.SubmitDeposit)

	v1.Get("/deposits/:id", h.GetDeposit)

	v1.Post("/assignments", RequireRole(auth.RoleAdmin, auth.RoleFinance), h.Assign)
	v1.Get("/assignments", h.ListAssignments)
	v1.Get("/assignments/:id", h.GetAssignment)
	v1.Post("/assignments/:id/visit-success", RequireRole(auth.RoleCollector), h.VisitSuccess)
	v1.Post("/assignments/:id/visit-failure", RequireRole(auth.RoleCollector), h.VisitFailure)

	finance := v1.Group("/finance", RequireRole(auth.RoleFinance))
	finance.Post("/deposits/:id/confirm", h.ConfirmDeposit)
	finance.Get("/reports/settlement", h.SettlementReport)

	return app
}
