package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/core/ports"
)

type StoreHandler struct {
	stores ports.StoreService
}

func NewStoreHandler(stores ports.StoreService) *StoreHandler {
	return &StoreHandler{stores: stores}
}

// List returns every store, newest first.
//
// @Summary      List stores
// @Tags         stores
// @Produce      json
// @Success      200  {array}   domain.Store
// @Router       /v1/stores [get]
func (h *StoreHandler) List(c echo.Context) error {
	stores, err := h.stores.ListStores(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emptyIfNil(stores))
}

// Create provisions a tenant. Root only; an existing slug is overwritten.
//
// @Summary      Create store
// @Tags         stores
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createStoreRequest  true  "Store"
// @Success      201   {object}  domain.Store
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/stores [post]
func (h *StoreHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req createStoreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	store, err := h.stores.CreateStore(c.Request().Context(), user, ports.CreateStoreInput{
		Slug:         req.Slug,
		Name:         req.Name,
		OwnerEmail:   req.OwnerEmail,
		OwnerPhone:   req.OwnerPhone,
		VPA:          req.VPA,
		MerchantName: req.MerchantName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, store)
}

// Get returns one store by slug.
//
// @Summary      Get store
// @Tags         stores
// @Produce      json
// @Param        slug  path      string  true  "Store slug"
// @Success      200   {object}  domain.Store
// @Failure      404   {object}  map[string]string
// @Router       /v1/stores/{slug} [get]
func (h *StoreHandler) Get(c echo.Context) error {
	store, err := h.stores.GetStore(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

// Update changes store settings. Owner or root.
//
// @Summary      Update store settings
// @Tags         stores
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slug  path      string              true  "Store slug"
// @Param        body  body      updateStoreRequest  true  "Fields to change"
// @Success      200   {object}  domain.Store
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/stores/{slug} [patch]
func (h *StoreHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req updateStoreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	store, err := h.stores.UpdateStoreSettings(c.Request().Context(), user, c.Param("slug"), req.settings())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

// Delete removes the store record. Products and orders are left in place.
//
// @Summary      Delete store
// @Tags         stores
// @Security     BearerAuth
// @Param        slug  path  string  true  "Store slug"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /v1/stores/{slug} [delete]
func (h *StoreHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.stores.DeleteStore(c.Request().Context(), user, c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
