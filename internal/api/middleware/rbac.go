package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aimatch/portal/internal/core/permission"
)

// RBAC admits the request only when allow holds for the capabilities of the
// current session. It must run after Session.
func RBAC(allow func(permission.Capabilities) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := SessionFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}
			if !allow(permission.Resolve(sess)) {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}
