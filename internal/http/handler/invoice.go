package handler

import (
	"github.com/gofiber/fiber/v2"

	"districtops/internal/http/middleware"
	"districtops/internal/model"
	"districtops/internal/repository"
	"districtops/internal/service"
)

type notesRequest struct {
	Notes string `json:"notes"`
}

type bulkApproveRequest struct {
	IDs   []string `json:"ids"`
	Notes string   `json:"notes"`
}

// CreateInvoice handles POST /invoices.
func CreateInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		var in model.Invoice
		if !bindJSON(c, &in) {
			return nil
		}
		in.DistrictID = district

		out, err := svc.Create(c.UserContext(), district, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// ListInvoices handles GET /invoices?contract_id=&status=.
func ListInvoices(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		items, err := svc.List(c.UserContext(), repository.InvoiceFilter{
			DistrictID: district,
			ContractID: c.Query("contract_id"),
			Status:     model.InvoiceStatus(c.Query("status")),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// GetInvoice handles GET /invoices/:id.
func GetInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

// InvoiceSummary handles GET /invoices/summary.
func InvoiceSummary(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		out, err := svc.Summary(c.UserContext(), district)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

// ReconcileInvoice handles POST /invoices/:id/reconcile.
func ReconcileInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rec service.Reconciliation
		if !bindJSON(c, &rec) {
			return nil
		}
		out, err := svc.Reconcile(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), rec)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

// ApproveInvoice handles POST /invoices/:id/approve.
func ApproveInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body notesRequest
		if len(c.Body()) > 0 && !bindJSON(c, &body) {
			return nil
		}
		res, err := svc.Approve(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), body.Notes)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DisputeInvoice handles POST /invoices/:id/dispute.
func DisputeInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body notesRequest
		if len(c.Body()) > 0 && !bindJSON(c, &body) {
			return nil
		}
		res, err := svc.Dispute(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), body.Notes)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// BulkApproveInvoices handles POST /invoices/bulk-approve. Any failed item
// turns the response into 207 Multi-Status; the body always lists every item.
func BulkApproveInvoices(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body bulkApproveRequest
		if !bindJSON(c, &body) {
			return nil
		}
		report, err := svc.BulkApprove(c.UserContext(), middleware.ActorFrom(c), body.IDs, body.Notes)
		if err != nil {
			return writeServiceError(c, err)
		}
		status := fiber.StatusOK
		if report.Failed > 0 {
			status = fiber.StatusMultiStatus
		}
		return c.Status(status).JSON(report)
	}
}
