package handler

import (
	"storefront/internal/dto"
	"storefront/internal/service"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postcodeForm struct {
	Postcode string `json:"postcode" validate:"required,uk_postcode"`
}

func TestValidatorMessages(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	err = validationError(v.Validate(&dto.CartItemRequest{ID: 0, Quantity: -1}))
	e, ok := service.AsError(err)
	require.True(t, ok)
	assert.Equal(t, service.KindInvalid, e.Kind)
	assert.Equal(t, []string{"id is required", "quantity must be greater than 0"}, e.Details)
	assert.Equal(t, "id is required", e.Message)

	assert.NoError(t, v.Validate(&dto.CartItemRequest{ID: 1, Quantity: 2}))

	err = validationError(v.Validate(&postcodeForm{Postcode: "NOPE"}))
	e, ok = service.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid UK postcode format", e.Message)
	assert.NoError(t, v.Validate(&postcodeForm{Postcode: "sw1a 1aa"}))
}
