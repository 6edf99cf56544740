package handler

import (
	"fmt"
	"net/http"
	"storefront/internal/cart"
	"storefront/internal/dto"
	"storefront/internal/service"
	"strconv"

	"github.com/labstack/echo/v4"
)

// CartHandler serves the server-side view of the cookie cart. The browser's
// local storage stays the source of truth; every mutation rewrites the cookie.
type CartHandler struct {
	cartService   service.CartService
	secureCookies bool
}

func NewCartHandler(cartService service.CartService, secureCookies bool) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		secureCookies: secureCookies,
	}
}

func (h *CartHandler) Get(c echo.Context) error {
	return h.respond(c, cart.FromRequest(c.Request()))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	crt := cart.FromRequest(c.Request())
	if err := h.cartService.Add(ctx, crt, req.ID, req.Quantity); err != nil {
		return err
	}

	return h.respond(c, crt)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	var req dto.CartQuantityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	crt := cart.FromRequest(c.Request())
	crt.SetQuantity(id, req.Quantity)
	return h.respond(c, crt)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	crt := cart.FromRequest(c.Request())
	crt.Remove(id)
	return h.respond(c, crt)
}

func (h *CartHandler) Clear(c echo.Context) error {
	crt := cart.FromRequest(c.Request())
	crt.Clear()
	return h.respond(c, crt)
}

func (h *CartHandler) Quote(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.QuoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	quote, err := h.cartService.Quote(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, quote)
}

// respond prices crt, stores it back in the cookie and returns the quote.
func (h *CartHandler) respond(c echo.Context, crt *cart.Cart) error {
	quote, err := h.cartService.View(c.Request().Context(), crt)
	if err != nil {
		return err
	}

	cookie, err := crt.Cookie(h.secureCookies)
	if err != nil {
		return fmt.Errorf("encode cart cookie: %w", err)
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, quote)
}

func productID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.Invalid("Invalid product id")
	}
	return id, nil
}
