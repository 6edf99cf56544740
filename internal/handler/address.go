package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	addressService service.AddressService
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
	}
}

func (h *AddressHandler) Lookup(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddressLookupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	addresses, err := h.addressService.Lookup(ctx, req.Postcode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.AddressLookupResponse{Addresses: addresses})
}
