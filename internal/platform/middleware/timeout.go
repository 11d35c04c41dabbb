package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medbook/medbook/internal/platform/apperr"
)

// RequestTimeout puts a deadline on each request context. The handler runs
// on the request goroutine and must observe the deadline through the
// context it passes to the store; if the deadline has passed when it
// returns and nothing was written, the client gets a 504 with the usual
// error body.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Response().Committed {
				return gatewayTimeout(c)
			}
			return err
		}
	}
}

func gatewayTimeout(c echo.Context) error {
	return c.JSON(http.StatusGatewayTimeout, apperr.Body{
		Error:   "timeout",
		Message: "Request processing exceeded the allowed time limit",
	})
}
