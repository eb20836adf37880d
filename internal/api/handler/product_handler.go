package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/core/ports"
)

type ProductHandler struct {
	catalog ports.CatalogService
}

func NewProductHandler(catalog ports.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// List returns the store's catalog, optionally filtered by ?q=.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        slug  path      string  true   "Store slug"
// @Param        q     query     string  false  "Case-insensitive name search"
// @Success      200   {array}   domain.Product
// @Router       /v1/stores/{slug}/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.catalog.ListProducts(c.Request().Context(), c.Param("slug"), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emptyIfNil(products))
}

// Stream pushes a full catalog snapshot on every change.
//
// @Summary      Stream products
// @Tags         products
// @Produce      text/event-stream
// @Param        slug  path  string  true  "Store slug"
// @Success      200
// @Router       /v1/stores/{slug}/products/stream [get]
func (h *ProductHandler) Stream(c echo.Context) error {
	snapshots, err := h.catalog.SubscribeProducts(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return streamSnapshots(c, snapshots)
}

// Create adds a product to the store's catalog.
//
// @Summary      Add product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slug  path      string          true  "Store slug"
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/stores/{slug}/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalog.AddProduct(c.Request().Context(), user, c.Param("slug"), toProductInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

// Update replaces a product's editable fields.
//
// @Summary      Update product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slug  path      string          true  "Store slug"
// @Param        id    path      string          true  "Product id"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  map[string]string
// @Router       /v1/stores/{slug}/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalog.UpdateProduct(c.Request().Context(), user, c.Param("slug"), c.Param("id"), toProductInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Delete removes a product. Placed orders keep their snapshot.
//
// @Summary      Delete product
// @Tags         products
// @Security     BearerAuth
// @Param        slug  path  string  true  "Store slug"
// @Param        id    path  string  true  "Product id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/stores/{slug}/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteProduct(c.Request().Context(), user, c.Param("slug"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
