package service

import (
	"context"
	"fmt"
	"storefront/internal/email"
	"storefront/internal/model"
)

type NotificationService interface {
	OrderPaid(ctx context.Context, order *model.Order) error
}

type notificationServiceImpl struct {
	sender email.Sender
}

func NewNotificationService(sender email.Sender) NotificationService {
	return &notificationServiceImpl{sender: sender}
}

func (s *notificationServiceImpl) OrderPaid(ctx context.Context, order *model.Order) error {
	if order.UserEmail == "" {
		return fmt.Errorf("order %s has no email address", order.ID)
	}

	msg, err := email.OrderConfirmation(order)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	return nil
}
