package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"districtops/internal/http/middleware"
	"districtops/internal/model"
	"districtops/internal/service"
)

type actionRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

// ApplyReviewAction handles POST /reviews/:kind/:id/actions. Invoices have
// their own endpoints and are rejected here.
func ApplyReviewAction(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := model.EntityKind(c.Params("kind"))
		if !kind.Valid() || kind == model.KindInvoice {
			return writeError(c, fiber.StatusNotFound, "UNKNOWN_KIND", "unknown reviewable kind")
		}
		var body actionRequest
		if !bindJSON(c, &body) {
			return nil
		}

		ref := model.EntityRef{Kind: kind, ID: c.Params("id")}
		res, err := svc.ApplyAction(c.UserContext(), middleware.ActorFrom(c), ref, model.Action(body.Action), body.Notes)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// CreateReport handles POST /reports for safety and driver reports.
func CreateReport(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		var rep model.Report
		if !bindJSON(c, &rep) {
			return nil
		}
		rep.DistrictID = district

		out, err := svc.CreateReport(c.UserContext(), district, rep)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// ListReports handles GET /reports?kind=.
func ListReports(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		items, err := svc.ListReports(c.UserContext(), district, model.EntityKind(c.Query("kind")))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// EntityAudit handles GET /audit/:kind/:id.
func EntityAudit(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := model.EntityKind(c.Params("kind"))
		if !kind.Valid() {
			return writeError(c, fiber.StatusNotFound, "UNKNOWN_KIND", "unknown reviewable kind")
		}
		items, err := svc.ForEntity(c.UserContext(), middleware.ActorFrom(c), model.EntityRef{Kind: kind, ID: c.Params("id")})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// DistrictAudit handles GET /audit with limit & offset.
func DistrictAudit(svc service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		page, err := svc.ForDistrict(c.UserContext(), district, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(page)
	}
}
