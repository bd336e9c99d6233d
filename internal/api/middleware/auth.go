package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/virtualpets/pet-api/internal/api/handler"
	"github.com/virtualpets/pet-api/internal/core/domain"
)

// TokenResolver turns a bearer token into the subject it identifies.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.Subject, error)
}

// Authenticate validates the bearer token and stores the caller's subject
// under handler.SubjectKey. Missing or invalid tokens end the request with 401.
func Authenticate(resolver TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrUnauthorized
			}

			sub, err := resolver.ResolveToken(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return domain.ErrUnauthorized
				}
				return err
			}

			c.Set(handler.SubjectKey, sub)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
