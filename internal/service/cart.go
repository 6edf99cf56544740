package service

import (
	"context"
	"errors"
	"fmt"
	"storefront/internal/cart"
	"storefront/internal/dto"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type CartService interface {
	View(ctx context.Context, c *cart.Cart) (*dto.Quote, error)
	Add(ctx context.Context, c *cart.Cart, productID int64, quantity int) error
	Quote(ctx context.Context, req *dto.QuoteRequest) (*dto.Quote, error)
}

type cartServiceImpl struct {
	pricer      Pricer
	productRepo repository.ProductRepository
}

func NewCartService(pricer Pricer, productRepo repository.ProductRepository) CartService {
	return &cartServiceImpl{
		pricer:      pricer,
		productRepo: productRepo,
	}
}

// View prices the cookie cart. Lines for products no longer in the catalog
// are dropped from c rather than failing the request.
func (s *cartServiceImpl) View(ctx context.Context, c *cart.Cart) (*dto.Quote, error) {
	q := &dto.Quote{Items: []dto.QuoteLine{}, Subtotal: decimal.Zero}

	kept := c.Items[:0]
	for _, it := range c.Items {
		p, err := s.productRepo.FindByID(ctx, it.ID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return nil, fmt.Errorf("find product %d: %w", it.ID, err)
		}
		if it.Quantity <= 0 {
			continue
		}
		kept = append(kept, it)

		line := PricedLine{Product: p, Quantity: it.Quantity}
		q.Items = append(q.Items, dto.QuoteLine{Product: p, Quantity: it.Quantity, LineTotal: line.LineTotal()})
		q.Subtotal = q.Subtotal.Add(line.LineTotal())
		q.Count += it.Quantity
	}
	c.Items = kept

	t := s.pricer.Totals(q.Subtotal, decimal.Zero)
	if len(q.Items) == 0 {
		t.Shipping = decimal.Zero
		t.Total = decimal.Zero
	}
	q.Shipping, q.Tax, q.Discount, q.Total = t.Shipping, t.Tax, decimal.Zero, t.Total
	return q, nil
}

func (s *cartServiceImpl) Add(ctx context.Context, c *cart.Cart, productID int64, quantity int) error {
	if quantity <= 0 {
		return Invalid("Quantity must be positive")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return NotFound("Product not found")
		}
		return fmt.Errorf("find product %d: %w", productID, err)
	}
	c.Add(productID, quantity)
	return nil
}

// Quote prices items the same way checkout will, including the discount code.
func (s *cartServiceImpl) Quote(ctx context.Context, req *dto.QuoteRequest) (*dto.Quote, error) {
	priced, err := s.pricer.Price(ctx, req.Items, req.DiscountCode)
	if err != nil {
		return nil, err
	}
	return quoteFrom(priced), nil
}

func quoteFrom(p *PricedCart) *dto.Quote {
	q := &dto.Quote{
		Items:        make([]dto.QuoteLine, 0, len(p.Lines)),
		Subtotal:     p.Subtotal,
		Shipping:     p.Shipping,
		Tax:          p.Tax,
		Discount:     p.Discount,
		DiscountCode: p.DiscountCode,
		Total:        p.Total,
	}
	for _, l := range p.Lines {
		q.Items = append(q.Items, dto.QuoteLine{Product: l.Product, Quantity: l.Quantity, LineTotal: l.LineTotal()})
		q.Count += l.Quantity
	}
	return q
}
