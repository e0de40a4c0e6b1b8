package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC restricts a route group to the given roles. The check runs before any
// handler logic, so a denied caller never triggers a data read.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have, _ := c.Get("role").(string)
			for _, want := range roles {
				if have == want {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "administrator access required"})
		}
	}
}
