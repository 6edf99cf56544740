package service

import (
	"context"
	"fmt"
	"storefront/internal/auth"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

type OrderService interface {
	List(ctx context.Context, user *auth.User) ([]*model.Order, error)
	Create(ctx context.Context, user *auth.User, req *dto.CreateOrderRequest) (*model.Order, error)
}

type orderServiceImpl struct {
	pricer    Pricer
	orderRepo repository.OrderRepository
	log       *zap.Logger
}

func NewOrderService(pricer Pricer, orderRepo repository.OrderRepository, log *zap.Logger) OrderService {
	return &orderServiceImpl{
		pricer:    pricer,
		orderRepo: orderRepo,
		log:       log.Named("orders"),
	}
}

func (s *orderServiceImpl) List(ctx context.Context, user *auth.User) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderServiceImpl) Create(ctx context.Context, user *auth.User, req *dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, Invalid("Order must contain at least one item")
	}

	cart, err := s.pricer.Price(ctx, req.Items, req.DiscountCode)
	if err != nil {
		return nil, err
	}

	order := newOrder(user, cart)
	if err := s.orderRepo.Create(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.log.Info("order placed", zap.String("order_id", order.ID), zap.String("user_id", user.ID))
	return order, nil
}
