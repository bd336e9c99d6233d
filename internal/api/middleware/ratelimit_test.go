package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestLocalLimiter_BurstThenBlock(t *testing.T) {
	l := NewLocalLimiter(60, 3)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(context.Background(), "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should pass, ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := l.Allow(context.Background(), "1.2.3.4"); ok {
		t.Fatalf("fourth request should be limited")
	}

	// Other keys have their own bucket.
	if ok, _ := l.Allow(context.Background(), "5.6.7.8"); !ok {
		t.Fatalf("different key should pass")
	}

	// 60/min refills one token per second.
	now = now.Add(time.Second)
	if ok, _ := l.Allow(context.Background(), "1.2.3.4"); !ok {
		t.Fatalf("token should refill after a second")
	}
}

type fixedLimiter struct {
	ok  bool
	err error
}

func (f fixedLimiter) Allow(context.Context, string) (bool, error) { return f.ok, f.err }

func runRateLimit(l Limiter) (bool, *httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := RateLimit(l, time.Minute, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return called, rec, h(c)
}

func TestRateLimit_Rejects(t *testing.T) {
	called, rec, err := runRateLimit(fixedLimiter{ok: false})
	if called {
		t.Fatalf("should not reach next")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	called, _, err := runRateLimit(fixedLimiter{err: errors.New("redis down")})
	if err != nil || !called {
		t.Fatalf("expected request to pass when limiter errors, err=%v", err)
	}
}
