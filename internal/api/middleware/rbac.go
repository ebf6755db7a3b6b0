package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LouieCads/proofwork/internal/core/ports"
)

// RequireRole enforces role-based access against the role registry. The
// caller passes when it holds any of the allowed roles. The ledger service
// re-checks roles itself; this gate just fails cheap requests early.
func RequireRole(authz ports.Authorizer, allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, _ := c.Get("identity").(string)
			if identity == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			for _, role := range allowedRoles {
				ok, err := authz.HasRole(c.Request().Context(), identity, role)
				if err != nil {
					return err
				}
				if ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
