package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
)

// /search
type SearchHandler struct {
	uc *usecase.ProductUsecase
}

func NewSearchHandler(uc *usecase.ProductUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

func (h *SearchHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/search", h.search)
}

func (h *SearchHandler) search(c echo.Context) error {
	sort, err := validator.ParseSortKey(c.QueryParam("sort"), model.SortRelevance, true)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.SearchProducts(c.Request().Context(), c.QueryParam("q"), sort)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
