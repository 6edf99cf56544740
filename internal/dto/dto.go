package dto

import (
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Item is a cart line as posted by the storefront. The browser sends whole
// product objects, so both id and product_id are accepted; prices and names
// in the payload are ignored.
type Item struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (i Item) Ref() int64 {
	if i.ID != 0 {
		return i.ID
	}
	return i.ProductID
}

type ShippingAddress struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	County       string `json:"county"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

func (a *ShippingAddress) Model() model.ShippingAddress {
	if a == nil {
		return model.ShippingAddress{}
	}
	return model.ShippingAddress{
		Name:         a.Name,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		County:       a.County,
		Postcode:     a.Postcode,
		Country:      a.Country,
	}
}

type ProductsResponse struct {
	Products []*model.Product `json:"products"`
}

type ProductResponse struct {
	Product *model.Product `json:"product"`
}

type CreatePaymentIntentRequest struct {
	Items        []Item `json:"items"`
	DiscountCode string `json:"discountCode"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string          `json:"clientSecret"`
	PaymentIntentID string          `json:"paymentIntentId"`
	OrderID         string          `json:"orderId"`
	Amount          decimal.Decimal `json:"amount"`
}

type UpdatePaymentIntentRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
	DiscountCode    string `json:"discountCode"`
}

type UpdatePaymentIntentResponse struct {
	Success bool            `json:"success"`
	Amount  decimal.Decimal `json:"amount"`
}

type CheckoutRequest struct {
	Items           []Item           `json:"items"`
	ShippingAddress *ShippingAddress `json:"shipping_address"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type CreateOrderRequest struct {
	Items        []Item `json:"items"`
	DiscountCode string `json:"discountCode"`
}

type CreateOrderResponse struct {
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

type OrdersResponse struct {
	Orders []*model.Order `json:"orders"`
}

type QuoteRequest struct {
	Items        []Item `json:"items"`
	DiscountCode string `json:"discountCode"`
}

type QuoteLine struct {
	Product   *model.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Quote struct {
	Items        []QuoteLine     `json:"items"`
	Count        int             `json:"count"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountCode string          `json:"discount_code,omitempty"`
	Total        decimal.Decimal `json:"total"`
}

type CartItemRequest struct {
	ID       int64 `json:"id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type AddressLookupRequest struct {
	Postcode string `json:"postcode"`
}

type Address struct {
	FormattedAddress string `json:"formatted_address"`
	AddressLine1     string `json:"address_line1"`
	City             string `json:"city"`
	County           string `json:"county"`
	Postcode         string `json:"postcode"`
	PlaceID          string `json:"place_id,omitempty"`
}

type AddressLookupResponse struct {
	Addresses []Address `json:"addresses"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type HealthCheck struct {
	Status  string `json:"status"`
	Latency *int64 `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status       string                 `json:"status"`
	Timestamp    string                 `json:"timestamp"`
	Uptime       float64                `json:"uptime"`
	ResponseTime int64                  `json:"responseTime"`
	Checks       map[string]HealthCheck `json:"checks"`
	Version      string                 `json:"version"`
	Environment  string                 `json:"environment"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type RateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}
