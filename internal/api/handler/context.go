package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/virtualpets/pet-api/internal/core/domain"
)

// SubjectKey is the echo context key under which the authentication
// middleware stores the *domain.Subject of the caller.
const SubjectKey = "subject"

// currentSubject returns the caller placed in the context by the
// authentication middleware. A missing subject means the route was wired
// without it, which is reported as 401 rather than trusted.
func currentSubject(c echo.Context) (*domain.Subject, error) {
	sub, _ := c.Get(SubjectKey).(*domain.Subject)
	if sub == nil {
		return nil, domain.ErrUnauthorized
	}
	return sub, nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+": must be a positive integer")
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	return c.Validate(req)
}
