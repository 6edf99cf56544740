package service

import (
	"context"
	"errors"
	"fmt"
	"storefront/internal/client"
	"storefront/internal/model"
	"storefront/internal/repository"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	eventPaymentIntentSucceeded = "payment_intent.succeeded"
	eventPaymentIntentFailed    = "payment_intent.payment_failed"
	eventCheckoutCompleted      = "checkout.session.completed"
	eventCheckoutExpired        = "checkout.session.expired"
)

type WebhookService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type webhookServiceImpl struct {
	db               *gorm.DB
	paymentClient    client.PaymentClient
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	notifier         NotificationService
	log              *zap.Logger
	now              func() time.Time
}

func NewWebhookService(
	db *gorm.DB,
	paymentClient client.PaymentClient,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	notifier NotificationService,
	log *zap.Logger,
) WebhookService {
	return &webhookServiceImpl{
		db:               db,
		paymentClient:    paymentClient,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		notifier:         notifier,
		log:              log.Named("webhook"),
		now:              time.Now,
	}
}

// HandleWebhook verifies and applies one provider event. Every event id is
// applied at most once; storage failures are returned so the provider
// redelivers.
func (s *webhookServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return Invalid("No signature found")
	}

	event, err := s.paymentClient.ConstructEvent(payload, signature)
	if err != nil {
		s.log.Warn("webhook signature verification failed", zap.Error(err))
		return Invalid("Webhook signature verification failed")
	}

	log := s.log.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	var paidOrderID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen, err := s.webhookEventRepo.Exists(ctx, tx, event.ID)
		if err != nil {
			return fmt.Errorf("check webhook event: %w", err)
		}
		if seen {
			log.Info("webhook event already processed")
			return nil
		}

		paidOrderID, err = s.apply(ctx, tx, log, event)
		if err != nil {
			return err
		}

		if err := s.webhookEventRepo.MarkProcessed(ctx, tx, event.ID, event.Type); err != nil {
			return fmt.Errorf("mark webhook event processed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if paidOrderID != "" {
		s.sendConfirmation(ctx, log, paidOrderID)
	}
	return nil
}

// apply writes the event onto its order and returns the order id when the
// order has just become paid.
func (s *webhookServiceImpl) apply(ctx context.Context, tx *gorm.DB, log *zap.Logger, event *client.Event) (string, error) {
	switch event.Type {
	case eventPaymentIntentSucceeded:
		pi := event.PaymentIntent
		if pi == nil {
			return "", nil
		}
		now := s.now()
		return s.update(ctx, tx, log, s.orderForIntent, pi.Metadata["order_id"], pi.ID, repository.PaymentUpdate{
			Status:          model.OrderStatusPaid,
			PaymentIntentID: pi.ID,
			PaymentStatus:   pi.Status,
			ShippingAddress: shippingFromIntent(pi),
			PaidAt:          &now,
		})

	case eventPaymentIntentFailed:
		pi := event.PaymentIntent
		if pi == nil {
			return "", nil
		}
		return s.update(ctx, tx, log, s.orderForIntent, pi.Metadata["order_id"], pi.ID, repository.PaymentUpdate{
			Status:          model.OrderStatusFailed,
			PaymentIntentID: pi.ID,
			PaymentStatus:   pi.Status,
		})

	case eventCheckoutCompleted:
		cs := event.CheckoutSession
		if cs == nil {
			return "", nil
		}
		now := s.now()
		return s.update(ctx, tx, log, s.orderForSession, cs.Metadata["order_id"], cs.ID, repository.PaymentUpdate{
			Status:            model.OrderStatusPaid,
			PaymentIntentID:   cs.PaymentIntentID,
			PaymentStatus:     cs.PaymentStatus,
			CheckoutSessionID: cs.ID,
			PaidAt:            &now,
		})

	case eventCheckoutExpired:
		cs := event.CheckoutSession
		if cs == nil {
			return "", nil
		}
		return s.update(ctx, tx, log, s.orderForSession, cs.Metadata["order_id"], cs.ID, repository.PaymentUpdate{
			Status:            model.OrderStatusCancelled,
			CheckoutSessionID: cs.ID,
		})

	default:
		log.Debug("ignoring webhook event")
		return "", nil
	}
}

type orderLookup func(ctx context.Context, tx *gorm.DB, orderID, providerID string) (*model.Order, error)

func (s *webhookServiceImpl) update(
	ctx context.Context,
	tx *gorm.DB,
	log *zap.Logger,
	lookup orderLookup,
	orderID, providerID string,
	update repository.PaymentUpdate,
) (string, error) {
	order, err := lookup(ctx, tx, orderID, providerID)
	if err != nil {
		return "", err
	}
	if order == nil {
		log.Warn("no order for webhook event",
			zap.String("order_id", orderID), zap.String("provider_id", providerID))
		return "", nil
	}

	changed, err := s.orderRepo.ApplyPaymentUpdate(ctx, tx, order.ID, update)
	if err != nil {
		return "", fmt.Errorf("update order %s: %w", order.ID, err)
	}
	if !changed {
		log.Info("order already paid, leaving status",
			zap.String("order_id", order.ID), zap.String("status", string(update.Status)))
		return "", nil
	}

	log.Info("order status updated",
		zap.String("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(update.Status)))

	if update.Status == model.OrderStatusPaid {
		return order.ID, nil
	}
	return "", nil
}

// orderForIntent resolves the order from metadata.order_id and falls back to
// the order holding the payment intent.
func (s *webhookServiceImpl) orderForIntent(ctx context.Context, tx *gorm.DB, orderID, paymentIntentID string) (*model.Order, error) {
	if orderID != "" {
		order, err := s.findOrder(ctx, tx, orderID)
		if err != nil || order != nil {
			return order, err
		}
	}

	order, err := s.orderRepo.FindByPaymentIntentID(ctx, tx, paymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order by payment intent: %w", err)
	}
	return order, nil
}

func (s *webhookServiceImpl) orderForSession(ctx context.Context, tx *gorm.DB, orderID, _ string) (*model.Order, error) {
	if orderID == "" {
		return nil, nil
	}
	return s.findOrder(ctx, tx, orderID)
}

func (s *webhookServiceImpl) findOrder(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *webhookServiceImpl) sendConfirmation(ctx context.Context, log *zap.Logger, orderID string) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		log.Error("load paid order for confirmation", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	if err := s.notifier.OrderPaid(ctx, order); err != nil {
		log.Error("order confirmation not sent", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	log.Info("order confirmation sent", zap.String("order_id", orderID))
}

func shippingFromIntent(pi *client.PaymentIntent) *model.ShippingAddress {
	sh := pi.Shipping
	if sh == nil {
		return nil
	}
	return &model.ShippingAddress{
		Name:         sh.Name,
		AddressLine1: sh.Line1,
		AddressLine2: sh.Line2,
		City:         sh.City,
		County:       sh.State,
		Postcode:     sh.PostalCode,
		Country:      sh.Country,
	}
}
