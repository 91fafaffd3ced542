package handler

import (
	"github.com/gofiber/fiber/v2"

	"districtops/internal/model"
	"districtops/internal/service"
)

type statusRequest struct {
	Status string `json:"status"`
}

// CreateSolicitation handles POST /bids.
func CreateSolicitation(svc service.BidService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		var in model.BidSolicitation
		if !bindJSON(c, &in) {
			return nil
		}
		in.DistrictID = district

		out, err := svc.CreateSolicitation(c.UserContext(), district, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// GetSolicitation handles GET /bids/:id.
func GetSolicitation(svc service.BidService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.GetSolicitation(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

// AdvanceSolicitation handles POST /bids/:id/status.
func AdvanceSolicitation(svc service.BidService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body statusRequest
		if !bindJSON(c, &body) {
			return nil
		}
		out, err := svc.AdvanceSolicitation(c.UserContext(), c.Params("id"), model.SolicitationStatus(body.Status))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

// SubmitBidResponse handles POST /bids/:id/responses.
func SubmitBidResponse(svc service.BidService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.BidResponse
		if !bindJSON(c, &in) {
			return nil
		}
		out, err := svc.SubmitResponse(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// RankBidResponses handles GET /bids/:id/responses, best score first.
func RankBidResponses(svc service.BidService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.RankResponses(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// SetBidResponseStatus handles POST /bids/:id/responses/:rid/status.
func SetBidResponseStatus(svc service.BidService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body statusRequest
		if !bindJSON(c, &body) {
			return nil
		}
		out, err := svc.SetResponseStatus(c.UserContext(), c.Params("id"), c.Params("rid"), model.BidResponseStatus(body.Status))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}
