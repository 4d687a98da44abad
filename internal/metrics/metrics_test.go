package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAuth(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("bad password"), "failure"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			counter := AuthAttempts.WithLabelValues("login", tc.result)
			before := testutil.ToFloat64(counter)
			RecordAuth("login", tc.err)
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordExam(t *testing.T) {
	passed := ExamsSubmitted.WithLabelValues("timed", "passed")
	failed := ExamsSubmitted.WithLabelValues("practice", "failed")
	passedBefore := testutil.ToFloat64(passed)
	failedBefore := testutil.ToFloat64(failed)

	RecordExam("timed", true, 18, 20)
	RecordExam("practice", false, 0, 0)

	assert.Equal(t, passedBefore+1, testutil.ToFloat64(passed))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/things/:id", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	RegisterRoutes(app)

	counter := HTTPRequests.WithLabelValues("GET", "/things/:id", "204")
	before := testutil.ToFloat64(counter)

	resp, err := app.Test(httptest.NewRequest("GET", "/things/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
