package handler

import (
	"github.com/gofiber/fiber/v2"

	"districtops/internal/model"
	"districtops/internal/service"
)

// CreateContract handles POST /contracts.
func CreateContract(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		var in model.Contract
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

// ListContracts handles GET /contracts with statuses derived at request time.
func ListContracts(svc service.ContractService, cal Calendar) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		items, err := svc.List(c.UserContext(), district, cal.now())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// GetContract handles GET /contracts/:id.
func GetContract(svc service.ContractService, cal Calendar) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.Get(c.UserContext(), c.Params("id"), cal.now())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

// AddInsurance handles POST /contracts/:id/insurance.
func AddInsurance(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.InsuranceRecord
		if !bindJSON(c, &in) {
			return nil
		}
		out, err := svc.AddInsurance(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// ListInsurance handles GET /contracts/:id/insurance.
func ListInsurance(svc service.ContractService, cal Calendar) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListInsurance(c.UserContext(), c.Params("id"), cal.now())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// RecordPerformance handles POST /contracts/:id/performance.
func RecordPerformance(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.PerformanceSample
		if !bindJSON(c, &in) {
			return nil
		}
		out, err := svc.RecordPerformance(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// Rankings handles GET /performance/rankings.
func Rankings(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		items, err := svc.Rankings(c.UserContext(), district)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// Benchmark handles GET /performance/benchmark.
func Benchmark(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		out, err := svc.Benchmark(c.UserContext(), district)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}
