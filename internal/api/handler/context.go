package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/api/middleware"
	"github.com/quickorder/storefront/internal/core/domain"
)

// ctxUser returns the caller set by the Auth middleware and fails fast when the
// route was mounted without it.
func ctxUser(c echo.Context) (*domain.User, error) {
	user := middleware.UserFrom(c)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
