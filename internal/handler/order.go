package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.List(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.OrdersResponse{Orders: orders})
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.Create(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, &dto.CreateOrderResponse{
		Message: "Order created successfully",
		Order:   order,
	})
}
