package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/api/middleware"
	"github.com/quickorder/storefront/internal/core/ports"
)

type NavigationHandler struct {
	nav ports.NavigationService
}

func NewNavigationHandler(nav ports.NavigationService) *NavigationHandler {
	return &NavigationHandler{nav: nav}
}

// Resolve tells the client which screen to render for ?store= and ?view=admin.
//
// @Summary      Resolve view
// @Tags         navigation
// @Produce      json
// @Param        store  query     string  false  "Store slug"
// @Param        view   query     string  false  "admin for the seller dashboard"
// @Success      200    {object}  navigationResponse
// @Router       /v1/navigate [get]
func (h *NavigationHandler) Resolve(c echo.Context) error {
	res := h.nav.Resolve(c.Request().Context(), ports.NavigationInput{
		Query:     c.QueryParams(),
		User:      middleware.UserFrom(c),
		WantAdmin: c.QueryParam("view") == "admin",
	})
	return c.JSON(http.StatusOK, navigationResponse{
		View:    string(res.View),
		Store:   res.Store,
		Message: res.Message,
	})
}
