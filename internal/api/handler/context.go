package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxAdmin extracts the auth claims injected by the Auth middleware and
// fast-fails before any service call: a non-empty role proves the middleware
// ran, and a price submission without a user identity cannot be attributed,
// so it is rejected as unauthenticated rather than recorded anonymously.
func ctxAdmin(c echo.Context) (userID string, err error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	return userID, nil
}
