package email

import (
	"context"
	"storefront/internal/config"
	"storefront/internal/model"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testOrder() *model.Order {
	return &model.Order{
		ID:        "3f2a9c1e-0000-4000-8000-000000000000",
		UserEmail: "ada@example.com",
		UserName:  "Ada <Lovelace>",
		Items: []model.OrderItem{
			{ProductID: 1, ProductName: "Magnetic Frag Rack [Large]", Price: decimal.RequireFromString("29.99"), Quantity: 2},
		},
		Subtotal:     decimal.RequireFromString("59.98"),
		Shipping:     decimal.Zero,
		Discount:     decimal.RequireFromString("6.00"),
		DiscountCode: "SAVE10",
		Total:        decimal.RequireFromString("53.98"),
		ShippingAddress: model.ShippingAddress{
			AddressLine1: "10 Downing Street",
			City:         "London",
			Postcode:     "SW1A 2AA",
		},
	}
}

func TestOrderConfirmation(t *testing.T) {
	msg, err := OrderConfirmation(testOrder())
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Order Confirmation - #3f2a9c1e", msg.Subject)
	assert.Contains(t, msg.HTML, "£59.98")
	assert.Contains(t, msg.HTML, "Free")
	assert.Contains(t, msg.HTML, "Discount (SAVE10)")
	assert.Contains(t, msg.HTML, "-£6.00")
	assert.Contains(t, msg.HTML, "London, SW1A 2AA")
	assert.Contains(t, msg.HTML, "Ada &lt;Lovelace&gt;")
	assert.NotContains(t, msg.HTML, "Tax:")
}

func TestOrderConfirmationWithoutExtras(t *testing.T) {
	o := testOrder()
	o.Shipping = decimal.RequireFromString("2.95")
	o.Discount = decimal.Zero
	o.DiscountCode = ""
	o.ShippingAddress = model.ShippingAddress{}

	msg, err := OrderConfirmation(o)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "£2.95")
	assert.NotContains(t, msg.HTML, "Discount")
	assert.NotContains(t, msg.HTML, "Shipping Address")
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSender(config.Email{}, zap.New(core))

	require.NoError(t, s.Send(context.Background(), Message{To: "ada@example.com", Subject: "hi"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ada@example.com", logs.All()[0].ContextMap()["to"])
}

func TestNewSenderPicksSMTP(t *testing.T) {
	s := NewSender(config.Email{SMTPHost: "smtp.example.com", SMTPPort: 587, From: "orders@example.com"}, zap.NewNop())
	smtpS, ok := s.(*smtpSender)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.com:587", smtpS.addr)
	assert.Nil(t, smtpS.auth)

	assert.Error(t, s.Send(context.Background(), Message{}))
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("orders@example.com", Message{To: "ada@example.com", Subject: "Hello", HTML: "<p>x</p>"}))
	assert.True(t, strings.HasPrefix(raw, "From: orders@example.com\r\n"))
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>x</p>"))
}
