package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets the response headers a browser needs to treat the
// API's JSON as data only. Strict-Transport-Security is sent on https
// requests when hsts is positive.
func SecurityHeaders(hsts time.Duration) echo.MiddlewareFunc {
	hstsValue := "max-age=" + strconv.Itoa(int(hsts.Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set(echo.HeaderXContentTypeOptions, "nosniff")
			h.Set(echo.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
			h.Set(echo.HeaderReferrerPolicy, "no-referrer")
			// bookings and tokens must not land in shared caches
			h.Set(echo.HeaderCacheControl, "no-store")
			if hsts > 0 && c.Scheme() == "https" {
				h.Set(echo.HeaderStrictTransportSecurity, hstsValue)
			}

			return next(c)
		}
	}
}
