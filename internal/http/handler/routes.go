package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"districtops/internal/http/middleware"
	"districtops/internal/model"
	"districtops/internal/service"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Registrations service.RegistrationService
	Reviews       service.ReviewService
	Audit         service.AuditService
	Contracts     service.ContractService
	Invoices      service.InvoiceService
	Bids          service.BidService
	Compliance    service.ComplianceService
}

// Calendar supplies the request clock and the month a new school year starts.
type Calendar struct {
	Now          func() time.Time
	CutoverMonth time.Month
}

func (cal Calendar) now() time.Time {
	if cal.Now == nil {
		return time.Now().UTC()
	}
	return cal.Now()
}

// schoolYear reads ?school_year=2025-2026 or derives the year from the clock.
func (cal Calendar) schoolYear(c *fiber.Ctx) (model.SchoolYear, error) {
	if s := c.Query("school_year"); s != "" {
		return model.ParseSchoolYear(s)
	}
	cutover := cal.CutoverMonth
	if cutover == 0 {
		cutover = time.August
	}
	return model.SchoolYearAt(cal.now(), cutover), nil
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, cal Calendar) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/", middleware.Actor())

	reg := api.Group("/registrations")
	reg.Post("/", SubmitRegistration(svc.Registrations, cal))
	reg.Get("/", ListRegistrations(svc.Registrations, cal))
	reg.Get("/export", ExportRegistrations(svc.Registrations, cal))
	reg.Get("/:id", GetRegistration(svc.Registrations))
	reg.Post("/:id/documents", AttachDocument(svc.Registrations))
	reg.Get("/:id/documents", ListDocuments(svc.Registrations))
	reg.Post("/:id/attestation", SignAttestation(svc.Registrations))
	reg.Post("/:id/reapply", Reapply(svc.Registrations))

	api.Post("/reviews/:kind/:id/actions", ApplyReviewAction(svc.Reviews))
	api.Post("/reports", CreateReport(svc.Reviews))
	api.Get("/reports", ListReports(svc.Reviews))

	api.Get("/audit", DistrictAudit(svc.Audit))
	api.Get("/audit/:kind/:id", EntityAudit(svc.Audit))

	con := api.Group("/contracts")
	con.Post("/", CreateContract(svc.Contracts))
	con.Get("/", ListContracts(svc.Contracts, cal))
	con.Get("/:id", GetContract(svc.Contracts, cal))
	con.Post("/:id/insurance", AddInsurance(svc.Contracts))
	con.Get("/:id/insurance", ListInsurance(svc.Contracts, cal))
	con.Post("/:id/performance", RecordPerformance(svc.Contracts))
	api.Get("/performance/rankings", Rankings(svc.Contracts))
	api.Get("/performance/benchmark", Benchmark(svc.Contracts))

	inv := api.Group("/invoices")
	inv.Post("/", CreateInvoice(svc.Invoices))
	inv.Get("/", ListInvoices(svc.Invoices))
	inv.Get("/summary", InvoiceSummary(svc.Invoices))
	inv.Post("/bulk-approve", BulkApproveInvoices(svc.Invoices))
	inv.Get("/:id", GetInvoice(svc.Invoices))
	inv.Post("/:id/reconcile", ReconcileInvoice(svc.Invoices))
	inv.Post("/:id/approve", ApproveInvoice(svc.Invoices))
	inv.Post("/:id/dispute", DisputeInvoice(svc.Invoices))

	bid := api.Group("/bids")
	bid.Post("/", CreateSolicitation(svc.Bids))
	bid.Get("/:id", GetSolicitation(svc.Bids))
	bid.Post("/:id/status", AdvanceSolicitation(svc.Bids))
	bid.Post("/:id/responses", SubmitBidResponse(svc.Bids))
	bid.Get("/:id/responses", RankBidResponses(svc.Bids))
	bid.Post("/:id/responses/:rid/status", SetBidResponseStatus(svc.Bids))

	cmp := api.Group("/compliance")
	cmp.Post("/state-reports", AddStateReport(svc.Compliance))
	cmp.Post("/trainings", AddTraining(svc.Compliance))
	cmp.Post("/protected-students", AddProtectedStudent(svc.Compliance))
	cmp.Post("/agreements", AddAgreement(svc.Compliance))
	cmp.Post("/breaches", AddBreach(svc.Compliance))
	cmp.Get("/readiness", Readiness(svc.Compliance, cal))
}

// HealthCheck reports healthy only when the database answers a ping. A nil
// db (memory backend) is always healthy.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// districtID prefers the identity header and falls back to ?district_id.
func districtID(c *fiber.Ctx) string {
	if id := middleware.ActorFrom(c).DistrictID; id != "" {
		return id
	}
	return c.Query("district_id")
}

// requireDistrict writes a 400 and returns false when no district is known.
func requireDistrict(c *fiber.Ctx) (string, bool) {
	id := districtID(c)
	if id == "" {
		_ = writeError(c, fiber.StatusBadRequest, "DISTRICT_REQUIRED", "district is required")
		return "", false
	}
	return id, true
}

// bindJSON parses the request body into dst, writing a 400 on failure.
func bindJSON(c *fiber.Ctx, dst any) bool {
	if err := c.BodyParser(dst); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return false
	}
	return true
}
