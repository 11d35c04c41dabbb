package middleware

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medbook/medbook/internal/platform/auth"
)

// Logger writes one structured line per request. For error responses the
// internal cause attached by the handler is logged; the client never sees it.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			status := c.Response().Status
			evt := logger.Info()
			if err != nil {
				status = statusOf(err)
				cause := err
				var he *echo.HTTPError
				if errors.As(err, &he) && he.Internal != nil {
					cause = he.Internal
				}
				if status >= 500 {
					evt = logger.Error().Err(cause)
				} else {
					evt = logger.Warn().Err(cause)
				}
			}

			rid, _ := c.Get("request_id").(string)
			id := auth.IdentityFromContext(req.Context())
			if id.Authenticated() {
				evt = evt.Int64("user_id", id.UserID)
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 500
}
