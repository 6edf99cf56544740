package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront/internal/config"
	"strings"

	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ErrInvalidSignature is returned by ConstructEvent when the payload was not
// signed with the configured webhook secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type PaymentClient interface {
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntent, error)
	UpdatePaymentIntent(ctx context.Context, id string, req *PaymentIntentUpdate) (*PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, id string) error
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
	ConstructEvent(payload []byte, signature string) (*Event, error)
}

type PaymentIntentRequest struct {
	Amount   int64 // minor units
	Currency string
	Metadata map[string]string
}

// PaymentIntentUpdate changes an open intent. A zero Amount keeps the
// current amount; Metadata keys are merged into the existing metadata.
type PaymentIntentUpdate struct {
	Amount   int64
	Metadata map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Status       string
	Metadata     map[string]string
	Shipping     *ShippingDetails
}

type ShippingDetails struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type CheckoutLineItem struct {
	Name      string
	Image     string
	UnitPrice int64 // minor units
	Quantity  int64
}

type CheckoutSessionRequest struct {
	Currency      string
	LineItems     []CheckoutLineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
	PaymentStatus   string
	Metadata        map[string]string
}

// Event is a verified webhook delivery. Exactly one of PaymentIntent and
// CheckoutSession is set for the event types the storefront handles.
type Event struct {
	ID              string
	Type            string
	PaymentIntent   *PaymentIntent
	CheckoutSession *CheckoutSession
}

type stripePaymentClient struct {
	api           *stripeclient.API
	webhookSecret string
}

func NewStripeClient(cfg *config.Stripe) PaymentClient {
	sc := &stripeclient.API{}
	sc.Init(cfg.SecretKey, nil)

	return &stripePaymentClient{
		api:           sc,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (c *stripePaymentClient) CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return toPaymentIntent(pi), nil
}

func (c *stripePaymentClient) UpdatePaymentIntent(ctx context.Context, id string, req *PaymentIntentUpdate) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	if req.Amount > 0 {
		params.Amount = stripe.Int64(req.Amount)
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.Update(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe update payment intent: %w", err)
	}
	return toPaymentIntent(pi), nil
}

func (c *stripePaymentClient) CancelPaymentIntent(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := c.api.PaymentIntents.Cancel(id, params); err != nil {
		return fmt.Errorf("stripe cancel payment intent: %w", err)
	}
	return nil
}

func (c *stripePaymentClient) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if li.Image != "" {
			product.Images = []*string{stripe.String(li.Image)}
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(li.UnitPrice),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return toCheckoutSession(s), nil
}

func (c *stripePaymentClient) ConstructEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch {
	case strings.HasPrefix(out.Type, "payment_intent."):
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("unmarshal payment intent: %w", err)
		}
		out.PaymentIntent = toPaymentIntent(&pi)
	case strings.HasPrefix(out.Type, "checkout.session."):
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("unmarshal checkout session: %w", err)
		}
		out.CheckoutSession = toCheckoutSession(&s)
	}
	return out, nil
}

func toPaymentIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	out := &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
	if pi.Shipping != nil {
		out.Shipping = &ShippingDetails{Name: pi.Shipping.Name}
		if a := pi.Shipping.Address; a != nil {
			out.Shipping.Line1 = a.Line1
			out.Shipping.Line2 = a.Line2
			out.Shipping.City = a.City
			out.Shipping.State = a.State
			out.Shipping.PostalCode = a.PostalCode
			out.Shipping.Country = a.Country
		}
	}
	return out
}

func toCheckoutSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}
