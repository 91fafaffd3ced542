package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"districtops/internal/flags"
	"districtops/internal/http/middleware"
	"districtops/internal/model"
	"districtops/internal/service"
)

// SubmitRegistration handles POST /registrations.
func SubmitRegistration(svc service.RegistrationService, cal Calendar) fiber.Handler {
	return func(c *fiber.Ctx) error {
		district, ok := requireDistrict(c)
		if !ok {
			return nil
		}
		year, err := cal.schoolYear(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SCHOOL_YEAR", err.Error())
		}
		var reg model.Registration
		if !bindJSON(c, &reg) {
			return nil
		}
		reg.DistrictID = district

		out, err := svc.Submit(c.UserContext(), district, year, reg)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

func registrationFilter(c *fiber.Ctx, cal Calendar) (service.RegistrationFilter, bool) {
	district, ok := requireDistrict(c)
	if !ok {
		return service.RegistrationFilter{}, false
	}
	year, err := cal.schoolYear(c)
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_SCHOOL_YEAR", err.Error())
		return service.RegistrationFilter{}, false
	}
	return service.RegistrationFilter{
		DistrictID: district,
		SchoolYear: year,
		Status:     model.ReviewStatus(c.Query("status")),
		Flag:       flags.Flag(strings.ToUpper(c.Query("flag"))),
	}, true
}

// ListRegistrations handles GET /registrations?status=&flag=&school_year=.
func ListRegistrations(svc service.RegistrationService, cal Calendar) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, ok := registrationFilter(c, cal)
		if !ok {
			return nil
		}
		items, err := svc.List(c.UserContext(), f)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items, "total": len(items)})
	}
}

// ExportRegistrations streams the filtered registrations as CSV.
func ExportRegistrations(svc service.RegistrationService, cal Calendar) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, ok := registrationFilter(c, cal)
		if !ok {
			return nil
		}
		var buf strings.Builder
		if err := svc.Export(c.UserContext(), &buf, f); err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="registrations-`+f.SchoolYear.String()+`.csv"`)
		return c.SendString(buf.String())
	}
}

// GetRegistration handles GET /registrations/:id.
func GetRegistration(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.Get(c.UserContext(), middleware.ActorFrom(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(out)
	}
}

// AttachDocument handles multipart POST /registrations/:id/documents with
// field "file" and form value "type".
func AttachDocument(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.AttachDocument(c.UserContext(), c.Params("id"), service.DocumentUpload{
			Reader:       f,
			Filename:     fh.Filename,
			ContentType:  ct,
			Size:         fh.Size,
			DocumentType: c.FormValue("type"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments handles GET /registrations/:id/documents.
func ListDocuments(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListDocuments(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": docs})
	}
}

// SignAttestation handles POST /registrations/:id/attestation.
func SignAttestation(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var att model.Attestation
		if !bindJSON(c, &att) {
			return nil
		}
		out, err := svc.SignAttestation(c.UserContext(), c.Params("id"), att)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// Reapply handles POST /registrations/:id/reapply.
func Reapply(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.Reapply(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}
