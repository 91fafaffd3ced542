package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"districtops/internal/metrics"
)

// MetricsPath is served by promhttp and never observed itself.
const MetricsPath = "/metrics"

// RequestMetrics feeds every request except scrapes into h, labelled with the
// matched route pattern such as /registrations/:id.
func RequestMetrics(h *metrics.HTTP) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == MetricsPath {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		h.ObserveRequest(c.Method(), route, responseStatus(c, err), time.Since(start))
		return err
	}
}

// responseStatus is the status the client will see once err reaches the
// error handler.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
