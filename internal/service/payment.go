package service

import (
	"context"
	"errors"
	"fmt"
	"storefront/internal/auth"
	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/validation"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultCountry = "United Kingdom"

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, user *auth.User, req *dto.CreatePaymentIntentRequest) (*dto.CreatePaymentIntentResponse, error)
	ApplyDiscount(ctx context.Context, user *auth.User, req *dto.UpdatePaymentIntentRequest) (*dto.UpdatePaymentIntentResponse, error)
	CreateCheckoutSession(ctx context.Context, user *auth.User, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

type paymentServiceImpl struct {
	paymentClient client.PaymentClient
	pricer        Pricer
	orderRepo     repository.OrderRepository
	currency      string
	siteURL       string
	log           *zap.Logger
}

func NewPaymentService(
	paymentClient client.PaymentClient,
	pricer Pricer,
	orderRepo repository.OrderRepository,
	currency string,
	siteURL string,
	log *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		paymentClient: paymentClient,
		pricer:        pricer,
		orderRepo:     orderRepo,
		currency:      currency,
		siteURL:       siteURL,
		log:           log.Named("payment"),
	}
}

func newOrder(user *auth.User, cart *PricedCart) *model.Order {
	return &model.Order{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		UserEmail:    user.Email,
		UserName:     user.Name,
		Items:        cart.OrderItems(),
		Subtotal:     cart.Subtotal,
		Shipping:     cart.Shipping,
		Tax:          cart.Tax,
		Discount:     cart.Discount,
		DiscountCode: cart.DiscountCode,
		Total:        cart.Total,
		Status:       model.OrderStatusPending,
	}
}

func (s *paymentServiceImpl) minimumOrderError() error {
	return Invalid(fmt.Sprintf("Minimum order amount is £%s", s.pricer.MinimumOrder().StringFixed(2)))
}

func (s *paymentServiceImpl) CreatePaymentIntent(ctx context.Context, user *auth.User, req *dto.CreatePaymentIntentRequest) (*dto.CreatePaymentIntentResponse, error) {
	cart, err := s.pricer.Price(ctx, req.Items, req.DiscountCode)
	if err != nil {
		return nil, err
	}
	if cart.Total.LessThan(s.pricer.MinimumOrder()) {
		return nil, s.minimumOrderError()
	}

	pi, err := s.paymentClient.CreatePaymentIntent(ctx, &client.PaymentIntentRequest{
		Amount:   MinorUnits(cart.Total),
		Currency: s.currency,
		Metadata: map[string]string{
			"user_id":       user.ID,
			"user_email":    user.Email,
			"item_count":    strconv.Itoa(len(cart.Lines)),
			"subtotal":      cart.Subtotal.StringFixed(2),
			"shipping":      cart.Shipping.StringFixed(2),
			"tax":           cart.Tax.StringFixed(2),
			"discount":      cart.Discount.StringFixed(2),
			"discount_code": cart.DiscountCode,
			"total":         cart.Total.StringFixed(2),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	order := newOrder(user, cart)
	order.PaymentIntentID = pi.ID

	if err := s.orderRepo.Create(ctx, nil, order); err != nil {
		if cerr := s.paymentClient.CancelPaymentIntent(ctx, pi.ID); cerr != nil {
			s.log.Error("cancel orphaned payment intent",
				zap.String("payment_intent_id", pi.ID), zap.Error(cerr))
		}
		return nil, fmt.Errorf("store order: %w", err)
	}

	// The webhook falls back to payment_intent_id when order_id is missing.
	if _, err := s.paymentClient.UpdatePaymentIntent(ctx, pi.ID, &client.PaymentIntentUpdate{
		Metadata: map[string]string{"order_id": order.ID},
	}); err != nil {
		s.log.Warn("attach order id to payment intent",
			zap.String("payment_intent_id", pi.ID),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	s.log.Info("payment intent created",
		zap.String("order_id", order.ID),
		zap.String("payment_intent_id", pi.ID),
		zap.String("user_id", user.ID),
		zap.String("total", cart.Total.StringFixed(2)))

	return &dto.CreatePaymentIntentResponse{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		OrderID:         order.ID,
		Amount:          cart.Total,
	}, nil
}

// ApplyDiscount re-prices a pending order with a new discount code and
// pushes the new amount to its payment intent. An empty code removes the
// discount.
func (s *paymentServiceImpl) ApplyDiscount(ctx context.Context, user *auth.User, req *dto.UpdatePaymentIntentRequest) (*dto.UpdatePaymentIntentResponse, error) {
	if req.PaymentIntentID == "" {
		return nil, Invalid("Payment intent ID is required")
	}

	order, err := s.orderRepo.FindByPaymentIntentForUser(ctx, user.ID, req.PaymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Order not found")
		}
		return nil, fmt.Errorf("find order by payment intent: %w", err)
	}
	if order.Status != model.OrderStatusPending {
		return nil, Invalid("Order can no longer be modified")
	}

	discount, code, err := s.pricer.Discount(order.Subtotal, req.DiscountCode)
	if err != nil {
		return nil, err
	}
	totals := s.pricer.Totals(order.Subtotal, discount)
	if totals.Total.LessThan(s.pricer.MinimumOrder()) {
		return nil, s.minimumOrderError()
	}

	if _, err := s.paymentClient.UpdatePaymentIntent(ctx, req.PaymentIntentID, &client.PaymentIntentUpdate{
		Amount: MinorUnits(totals.Total),
		Metadata: map[string]string{
			"subtotal":      order.Subtotal.StringFixed(2),
			"discount":      discount.StringFixed(2),
			"discount_code": code,
			"total":         totals.Total.StringFixed(2),
		},
	}); err != nil {
		return nil, fmt.Errorf("update payment intent: %w", err)
	}

	updated, err := s.orderRepo.UpdateDiscount(ctx, order.ID, repository.DiscountUpdate{
		Code:     code,
		Discount: discount,
		Total:    totals.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("update order discount: %w", err)
	}
	if !updated {
		return nil, Invalid("Order can no longer be modified")
	}

	return &dto.UpdatePaymentIntentResponse{Success: true, Amount: totals.Total}, nil
}

func (s *paymentServiceImpl) CreateCheckoutSession(ctx context.Context, user *auth.User, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	cart, err := s.pricer.Price(ctx, req.Items, "")
	if err != nil {
		return nil, err
	}

	if req.ShippingAddress == nil {
		return nil, Invalid("Shipping address is required")
	}
	addr := validation.SanitizeAddress(req.ShippingAddress.Model())
	if errs := validation.ValidateAddress(addr); len(errs) > 0 {
		return nil, Invalid(errs[0], errs...)
	}
	addr.Postcode = validation.FormatUKPostcode(addr.Postcode)
	if addr.Country == "" {
		addr.Country = defaultCountry
	}
	if addr.Name == "" {
		addr.Name = user.Name
	}

	order := newOrder(user, cart)
	order.ShippingAddress = addr
	if err := s.orderRepo.Create(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	lineItems := make([]client.CheckoutLineItem, 0, len(cart.Lines)+2)
	for _, l := range cart.Lines {
		lineItems = append(lineItems, client.CheckoutLineItem{
			Name:      l.Product.Name,
			Image:     l.Product.Image,
			UnitPrice: MinorUnits(l.Product.Price),
			Quantity:  int64(l.Quantity),
		})
	}
	lineItems = appendFeeLine(lineItems, "Tax", cart.Tax)
	lineItems = appendFeeLine(lineItems, "Shipping", cart.Shipping)

	session, err := s.paymentClient.CreateCheckoutSession(ctx, &client.CheckoutSessionRequest{
		Currency:      s.currency,
		LineItems:     lineItems,
		CustomerEmail: user.Email,
		SuccessURL:    s.siteURL + "/orders?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.siteURL + "/checkout",
		Metadata: map[string]string{
			"order_id": order.ID,
			"user_id":  user.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.orderRepo.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		s.log.Warn("store checkout session id",
			zap.String("order_id", order.ID),
			zap.String("session_id", session.ID),
			zap.Error(err))
	}

	return &dto.CheckoutResponse{SessionID: session.ID, URL: session.URL}, nil
}

func appendFeeLine(items []client.CheckoutLineItem, name string, amount decimal.Decimal) []client.CheckoutLineItem {
	if !amount.IsPositive() {
		return items
	}
	return append(items, client.CheckoutLineItem{
		Name:      name,
		UnitPrice: MinorUnits(amount),
		Quantity:  1,
	})
}
