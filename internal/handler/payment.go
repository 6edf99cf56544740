package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreatePaymentIntentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.paymentService.CreatePaymentIntent(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) UpdatePaymentIntent(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.UpdatePaymentIntentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.paymentService.ApplyDiscount(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.paymentService.CreateCheckoutSession(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
