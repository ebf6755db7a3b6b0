package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// callerIdentity extracts the identity injected by the Auth middleware. Its
// presence proves the middleware ran; without it the request is rejected
// before any service call.
func callerIdentity(c echo.Context) (string, error) {
	identity, _ := c.Get("identity").(string)
	if identity == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity, nil
}
