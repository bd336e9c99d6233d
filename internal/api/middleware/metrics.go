package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/virtualpets/pet-api/internal/api/metrics"
)

// RequestMetrics observes request latency keyed by route pattern and the
// status actually written to the client.
//
// A handler error is rendered here through c.Error so the recorded status is
// the one the error handler chose. The error is still returned; outer
// middleware see a committed response and do not write again.
func RequestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, statusLabel(c.Response().Status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func statusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
