package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/virtualpets/pet-api/internal/api/handler"
	"github.com/virtualpets/pet-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders handler.ErrorResponse for every failure.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, fields := resolveError(err, log, c)
		body := handler.ErrorResponse{
			Error:       http.StatusText(code),
			Message:     msg,
			Status:      code,
			Timestamp:   time.Now().UTC(),
			Path:        c.Request().URL.Path,
			FieldErrors: fields,
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, map[string]string) {
	// Echo's own errors (bind failures, 404/405 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "Validation failed", ve.Fields
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusBadRequest, "Username already taken", nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials", nil
	case errors.Is(err, domain.ErrPetNotFound):
		return http.StatusNotFound, "Pet not found", nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", nil
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication required", nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access denied", nil
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "Validation failed", nil
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "An unexpected error occurred", nil
}
