package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter for every handled request
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proviquiz_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proviquiz_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// action: register/login/google/reset, result: success/failure
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proviquiz_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"action", "result"},
	)

	// result: passed/failed
	ExamsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proviquiz_exams_submitted_total",
			Help: "Total number of graded exam submissions",
		},
		[]string{"mode", "result"},
	)

	ExamScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proviquiz_exam_score_ratio",
			Help:    "Score over total questions of submitted exams",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

func RecordAuth(action string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AuthAttempts.WithLabelValues(action, result).Inc()
}

func RecordExam(mode string, passed bool, score, total int) {
	result := "failed"
	if passed {
		result = "passed"
	}
	ExamsSubmitted.WithLabelValues(mode, result).Inc()
	if total > 0 {
		ExamScore.Observe(float64(score) / float64(total))
	}
}

// Middleware records count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func RegisterRoutes(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
