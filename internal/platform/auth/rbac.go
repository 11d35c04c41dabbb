package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medbook/medbook/internal/platform/apperr"
)

// RequireRole returns middleware that checks the caller holds one of the
// given roles. Admin always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFromContext(c.Request().Context())
			if !id.Authenticated() {
				return apperr.HTTP(apperr.Unauthorized("authentication required"), "")
			}
			if id.IsAdmin() {
				return next(c)
			}
			for _, r := range roles {
				if id.Role == r {
					return next(c)
				}
			}
			return apperr.HTTP(apperr.Forbidden("required role: "+strings.Join(roles, " or ")), "")
		}
	}
}
