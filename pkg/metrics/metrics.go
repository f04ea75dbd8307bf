package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Path = "/metrics"

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// UnmatchedRoute labels every request no registered route handled.
const UnmatchedRoute = "unmatched"

// RouteLabel returns the registered route pattern, so /items/42 and /items/7 share "/items/:id".
func RouteLabel(c *fiber.Ctx, err error) string {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && (fiberErr.Code == fiber.StatusNotFound || fiberErr.Code == fiber.StatusMethodNotAllowed) {
		return UnmatchedRoute
	}
	return c.Route().Path
}

func Middleware(c *fiber.Ctx) error {
	if c.Path() == Path {
		return c.Next()
	}

	start := time.Now()
	err := c.Next()
	duration := time.Since(start).Seconds()

	status := c.Response().StatusCode()
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	path := RouteLabel(c, err)
	RequestTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(c.Method(), path).Observe(duration)

	return err
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
