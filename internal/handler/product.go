package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/service"
	"strconv"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productService.List(ctx, c.QueryParam("category"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.ProductsResponse{Products: products})
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.productService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.ProductResponse{Product: product})
}

func (h *ProductHandler) Recommended(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return service.Invalid("Invalid limit")
		}
		limit = n
	}

	products, err := h.productService.Recommended(ctx, c.Param("id"), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.ProductsResponse{Products: products})
}
