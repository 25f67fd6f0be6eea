package log

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "towops",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "The latency of the HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"api", "route"})

	httpRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "towops",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of the HTTP requests.",
	}, []string{"api", "route", "method", "code"})
)

type LoggerConfig struct {
	Name      string
	DoMetrics bool
	// Quiet logs successful requests at debug level.
	Quiet bool
	// Skip lists routes that are neither logged nor measured.
	Skip []string
}

func NewFiberLogger(conf *LoggerConfig) fiber.Handler {
	if conf == nil {
		conf = &LoggerConfig{Name: "http"}
	}

	skip := make(map[string]bool, len(conf.Skip))
	for _, s := range conf.Skip {
		skip[s] = true
	}

	logger := slog.Default().With(slog.String("logger", conf.Name))

	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		wt := time.Since(start)

		route := routeOf(c)
		if skip[route] {
			return chainErr
		}

		// the error handler has not run yet, so take the status from the error
		status := c.Response().StatusCode()
		if chainErr != nil {
			status = fiber.StatusInternalServerError
			if e, ok := chainErr.(*fiber.Error); ok {
				status = e.Code
			}
		}

		if conf.DoMetrics {
			observe(conf.Name, route, c.Method(), status, wt)
		}

		l := logger
		if chainErr != nil {
			l = l.With(slog.Any("error", chainErr))
		}

		msg := fmt.Sprintf("%d %s %s", status, c.Method(), c.OriginalURL())
		attrs := []any{
			slog.String("client", c.IP()),
			slog.Int("status", status),
			slog.Int64("ms", wt.Milliseconds()),
		}

		switch {
		case status >= 500:
			l.Error(msg, attrs...)
		case status >= 400:
			l.Warn(msg, attrs...)
		case conf.Quiet:
			l.Debug(msg, attrs...)
		default:
			l.Info(msg, attrs...)
		}

		return chainErr
	}
}

// routeOf returns the matched route pattern, falling back to the raw path.
func routeOf(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}

	return c.Path()
}

func observe(api, route, method string, status int, t time.Duration) {
	httpRequestsDuration.With(prometheus.Labels{"api": api, "route": route}).Observe(t.Seconds())

	httpRequestsCount.With(prometheus.Labels{
		"api":    api,
		"route":  route,
		"method": method,
		"code":   strconv.Itoa(status),
	}).Inc()
}
