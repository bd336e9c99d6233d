package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/virtualpets/pet-api/internal/api/handler"
	"github.com/virtualpets/pet-api/internal/api/metrics"
	"github.com/virtualpets/pet-api/internal/core/domain"
)

// Authorize gates a route group with domain.Decide for categories that do
// not depend on a specific resource. Owned-resource checks happen in the
// pet service once the owner is known.
func Authorize(cat domain.EndpointCategory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sub, _ := c.Get(handler.SubjectKey).(*domain.Subject)

			decision := domain.Decide(sub, 0, cat)
			metrics.AccessDecisionsTotal.WithLabelValues(string(cat), decision.String()).Inc()

			if decision == domain.Deny {
				if sub == nil {
					return domain.ErrUnauthorized
				}
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
