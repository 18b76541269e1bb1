package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autostack/access-service/internal/api/middleware"
	"github.com/autostack/access-service/internal/core/domain"
)

// ctxPrincipal returns the principal attached by the Guard middleware. Its
// absence means the route was registered without the guard.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	principal, ok := c.Get(middleware.PrincipalKey).(*domain.Principal)
	if !ok || principal == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return principal, nil
}
