package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func serveWithHeaders(t *testing.T, hsts time.Duration, req *http.Request, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	err := SecurityHeaders(hsts)(handler)(e.NewContext(req, rec))
	return rec, err
}

func TestSecurityHeaders_JSONResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/appointments/me", nil)
	rec, err := serveWithHeaders(t, time.Hour, req, func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":         "no-referrer",
		"Cache-Control":           "no-store",
	}
	for header, v := range want {
		if got := rec.Header().Get(header); got != v {
			t.Errorf("header %s: got %q, want %q", header, got, v)
		}
	}
	// plain http: browsers ignore HSTS here
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("expected no HSTS over http, got %q", got)
	}
	for _, legacy := range []string{"X-XSS-Protection", "X-Frame-Options", "Permissions-Policy"} {
		if got := rec.Header().Get(legacy); got != "" {
			t.Errorf("expected %s unset, got %q", legacy, got)
		}
	}
}

func TestSecurityHeaders_HSTSBehindTLSProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	req.Header.Set(echo.HeaderXForwardedProto, "https")

	rec, err := serveWithHeaders(t, 8760*time.Hour, req, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000" {
		t.Errorf("HSTS: got %q", got)
	}
}

func TestSecurityHeaders_HSTSDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderXForwardedProto, "https")

	rec, _ := serveWithHeaders(t, 0, req, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("expected no HSTS when max-age is zero, got %q", got)
	}
}

func TestSecurityHeaders_SetOnHandlerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/doctors/99", nil)
	rec, err := serveWithHeaders(t, 0, req, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected the handler's 404 to propagate, got %v", err)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("expected headers on error responses too")
	}
}
