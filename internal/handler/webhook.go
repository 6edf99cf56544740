package handler

import (
	"io"
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBody  = 1 << 20
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Stripe verifies the signature over the raw body, so it must not be bound.
func (h *WebhookHandler) Stripe(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return service.Invalid("Invalid request body")
	}

	if err := h.webhookService.HandleWebhook(ctx, body, c.Request().Header.Get(signatureHeader)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.WebhookResponse{Received: true})
}
