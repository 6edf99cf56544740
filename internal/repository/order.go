package repository

import (
	"context"
	"storefront/internal/model"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	FindByPaymentIntentID(ctx context.Context, tx *gorm.DB, paymentIntentID string) (*model.Order, error)
	FindByPaymentIntentForUser(ctx context.Context, userID, paymentIntentID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	SetCheckoutSession(ctx context.Context, orderID, sessionID string) error
	UpdateDiscount(ctx context.Context, orderID string, update DiscountUpdate) (bool, error)
	ApplyPaymentUpdate(ctx context.Context, tx *gorm.DB, orderID string, update PaymentUpdate) (bool, error)
}

type DiscountUpdate struct {
	Code     string
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// PaymentUpdate carries the fields a webhook writes onto an order. Empty
// strings and a nil ShippingAddress leave the stored value untouched; an
// address with no line1, city or postcode only updates the name.
type PaymentUpdate struct {
	Status            model.OrderStatus
	PaymentIntentID   string
	PaymentStatus     string
	CheckoutSessionID string
	ShippingAddress   *model.ShippingAddress
	PaidAt            *time.Time
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return r.conn(tx).WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByPaymentIntentID(ctx context.Context, tx *gorm.DB, paymentIntentID string) (*model.Order, error) {
	var order model.Order
	err := r.conn(tx).WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		Order("created_at DESC").
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByPaymentIntentForUser(ctx context.Context, userID, paymentIntentID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("payment_intent_id = ? AND user_id = ?", paymentIntentID, userID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	orders := []*model.Order{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) SetCheckoutSession(ctx context.Context, orderID, sessionID string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"checkout_session_id": sessionID,
			"updated_at":          time.Now(),
		}).Error
}

// UpdateDiscount rewrites the discount of a pending order. It reports false
// when the order has left pending in the meantime.
func (r *orderRepoImpl) UpdateDiscount(ctx context.Context, orderID string, update DiscountUpdate) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"discount":      update.Discount,
			"discount_code": update.Code,
			"total":         update.Total,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ApplyPaymentUpdate writes update onto the order unless it is already paid.
// It reports whether a row changed.
func (r *orderRepoImpl) ApplyPaymentUpdate(ctx context.Context, tx *gorm.DB, orderID string, update PaymentUpdate) (bool, error) {
	fields := map[string]interface{}{
		"status":     update.Status,
		"updated_at": time.Now(),
	}
	if update.PaymentIntentID != "" {
		fields["payment_intent_id"] = update.PaymentIntentID
	}
	if update.PaymentStatus != "" {
		fields["payment_status"] = update.PaymentStatus
	}
	if update.CheckoutSessionID != "" {
		fields["checkout_session_id"] = update.CheckoutSessionID
	}
	if update.PaidAt != nil {
		fields["paid_at"] = *update.PaidAt
	}
	if a := update.ShippingAddress; a != nil {
		if a.Name != "" {
			fields["shipping_name"] = a.Name
		}
		if a.AddressLine1 != "" || a.City != "" || a.Postcode != "" {
			fields["shipping_address_line1"] = a.AddressLine1
			fields["shipping_address_line2"] = a.AddressLine2
			fields["shipping_city"] = a.City
			fields["shipping_county"] = a.County
			fields["shipping_postcode"] = a.Postcode
			fields["shipping_country"] = a.Country
		}
	}

	result := r.conn(tx).WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status <> ?", orderID, model.OrderStatusPaid).
		Updates(fields)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
