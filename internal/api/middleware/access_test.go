package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/virtualpets/pet-api/internal/api/handler"
	"github.com/virtualpets/pet-api/internal/core/domain"
)

func runAuthorize(sub *domain.Subject, cat domain.EndpointCategory) (bool, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sub != nil {
		c.Set(handler.SubjectKey, sub)
	}

	called := false
	h := Authorize(cat)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return called, h(c)
}

func TestAuthorize(t *testing.T) {
	user := &domain.Subject{UserID: 1, Username: "alice", Role: domain.RoleUser}
	admin := &domain.Subject{UserID: 2, Username: "root", Role: domain.RoleAdmin}

	cases := []struct {
		name    string
		sub     *domain.Subject
		cat     domain.EndpointCategory
		allowed bool
		wantErr error
	}{
		{"user on self scoped", user, domain.CategorySelfScoped, true, nil},
		{"admin on admin only", admin, domain.CategoryAdminOnly, true, nil},
		{"user on admin only", user, domain.CategoryAdminOnly, false, domain.ErrForbidden},
		{"anonymous on self scoped", nil, domain.CategorySelfScoped, false, domain.ErrUnauthorized},
		{"anonymous on public", nil, domain.CategoryPublic, true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called, err := runAuthorize(tc.sub, tc.cat)
			if called != tc.allowed {
				t.Fatalf("expected next called=%v, got %v", tc.allowed, called)
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
