package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /categories
type CategoryHandler struct {
	uc *usecase.ProductUsecase
}

func NewCategoryHandler(uc *usecase.ProductUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/categories", h.list)
	e.GET("/categories/:slug/products", h.products)
}

func (h *CategoryHandler) list(c echo.Context) error {
	items, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *CategoryHandler) products(c echo.Context) error {
	criteria, sort, err := parseListQuery(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListCategoryProducts(c.Request().Context(), c.Param("slug"), criteria, sort)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
