package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/taskmanager-api/internal/api/middleware"
	"github.com/taskhub/taskmanager-api/internal/core/domain"
)

// principal returns the subject stored by the Authenticate middleware. Its
// absence means the route was registered without authentication.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.UserID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
