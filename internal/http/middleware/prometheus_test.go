package middleware

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"districtops/internal/metrics"
)

func newMetricsApp(t *testing.T) (*fiber.App, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	h, err := metrics.NewHTTP(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(RequestMetrics(h))
	return app, reg
}

func requestsTotal(t *testing.T, reg *prometheus.Registry, method, path, status string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["method"] == method && labels["path"] == path && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRequestMetrics(t *testing.T) {
	app, reg := newMetricsApp(t)
	app.Get("/invoices/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/invoices/:id/approve", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "not pending")
	})
	app.Post("/invoices/bulk-approve", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusMultiStatus) })

	for _, id := range []string{"i-1", "i-2"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/invoices/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	_, err := app.Test(httptest.NewRequest("POST", "/invoices/i-1/approve", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("POST", "/invoices/bulk-approve", nil))
	require.NoError(t, err)

	assert.Equal(t, 2.0, requestsTotal(t, reg, "GET", "/invoices/:id", "200"), "ids collapse into the route pattern")
	assert.Equal(t, 1.0, requestsTotal(t, reg, "POST", "/invoices/:id/approve", "422"))
	assert.Equal(t, 1.0, requestsTotal(t, reg, "POST", "/invoices/bulk-approve", "207"))
}

func TestRequestMetrics_SkipsScrapes(t *testing.T) {
	app, reg := newMetricsApp(t)
	app.Get(MetricsPath, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, err := app.Test(httptest.NewRequest("GET", MetricsPath, nil))
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "http_requests_total", "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRequestMetrics_PlainErrorCountsAsServerError(t *testing.T) {
	app, reg := newMetricsApp(t)
	app.Get("/contracts", func(c *fiber.Ctx) error { return errors.New("pool exhausted") })

	_, err := app.Test(httptest.NewRequest("GET", "/contracts", nil))
	require.NoError(t, err)

	assert.Equal(t, 1.0, requestsTotal(t, reg, "GET", "/contracts", "500"))
	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP http_requests_total Total number of HTTP requests processed.
# TYPE http_requests_total counter
http_requests_total{method="GET",path="/contracts",status="500"} 1
`), "http_requests_total")
	assert.NoError(t, err)
}
