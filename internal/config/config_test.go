package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "gbp", cfg.Stripe.Currency)
	assert.True(t, cfg.Shop.FreeShippingThreshold.Equal(decimal.NewFromInt(49)))
	assert.True(t, cfg.Shop.ShippingFee.Equal(decimal.RequireFromString("2.95")))
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)

	codes, err := cfg.Shop.DiscountPercents()
	require.NoError(t, err)
	assert.True(t, codes["SAVE10"].Equal(decimal.NewFromInt(10)))
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("SHOP_DISCOUNT_CODES", "save10:10,Spring:25")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)

	codes, err := cfg.Shop.DiscountPercents()
	require.NoError(t, err)
	assert.Len(t, codes, 2)
	assert.True(t, codes["SPRING"].Equal(decimal.NewFromInt(25)))
}

func TestDiscountPercentsRejectsGarbage(t *testing.T) {
	_, err := Shop{DiscountCodes: map[string]string{"X": "ten"}}.DiscountPercents()
	assert.Error(t, err)

	_, err = Shop{DiscountCodes: map[string]string{"X": "150"}}.DiscountPercents()
	assert.Error(t, err)
}

func TestMissingRequired(t *testing.T) {
	cfg := &Config{DatabaseURL: "sqlite://x.db"}
	assert.ElementsMatch(t,
		[]string{"STRIPE_SECRET_KEY", "STRIPE_PUBLISHABLE_KEY", "AUTH_JWT_SECRET"},
		cfg.MissingRequired())

	cfg.Stripe.SecretKey = "sk"
	cfg.Stripe.PublishableKey = "pk"
	cfg.Auth.JWTSecret = "secret"
	assert.Empty(t, cfg.MissingRequired())
}
