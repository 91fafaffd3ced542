package handler

import (
	"github.com/gofiber/fiber/v2"

	"districtops/internal/model"
	"districtops/internal/service"
)

// createIn binds a district-scoped artifact and stores it through add.
func createIn[T any](c *fiber.Ctx, setDistrict func(*T, string), add func(string, T) (*T, error)) error {
	district, ok := requireDistrict(c)
	if !ok {
		return nil
	}
	var in T
	if !bindJSON(c, &in) {
		return nil
	}
	setDistrict(&in, district)

	out, err := add(district, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AddStateReport handles POST /compliance/state-reports.
func AddStateReport(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return createIn(c,
			func(r *model.StateReport, d string) { r.DistrictID = d },
			func(d string, r model.StateReport) (*model.StateReport, error) {
				return svc.AddStateReport(c.UserContext(), d, r)
			})
	}
}

// AddTraining handles POST /compliance/trainings.
func AddTraining(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return createIn(c,
			func(r *model.TrainingRecord, d string) { r.DistrictID = d },
			func(d string, r model.TrainingRecord) (*model.TrainingRecord, error) {
				return svc.AddTraining(c.UserContext(), d, r)
			})
	}
}

// AddProtectedStudent handles POST /compliance/protected-students.
func AddProtectedStudent(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return createIn(c,
			func(r *model.ProtectedStudentRecord, d string) { r.DistrictID = d },
			func(d string, r model.ProtectedStudentRecord) (*model.ProtectedStudentRecord, error) {
				return svc.AddProtectedStudent(c.UserContext(), d, r)
			})
	}
}

// AddAgreement handles POST /compliance/agreements.
func AddAgreement(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return createIn(c,
			func(r *model.DataSharingAgreement, d string) { r.DistrictID = d },
			func(d string, r model.DataSharingAgreement) (*model.DataSharingAgreement, error) {
				return svc.AddAgreement(c.UserContext(), d, r)
			})
	}
}

// AddBreach handles POST /compliance/breaches.
func AddBreach(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return createIn(c,
			func(r *model.BreachRecord, d string) { r.DistrictID = d },
			func(d string, r model.BreachRecord) (*model.BreachRecord, error) {
				return svc.AddBreach(c.UserContext(), d, r)
			})
	}
}

// Readiness handles GET /compliance/readiness?school_year=.
func Readiness(svc service.ComplianceService, cal Calendar) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		year, err := cal.schoolYear(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SCHOOL_YEAR", err.Error())
		}
		out, err := svc.Readiness(c.UserContext(), district, year, cal.now())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}
