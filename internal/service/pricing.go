package service

import (
	"context"
	"fmt"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
	MinimumOrder          decimal.Decimal
	DiscountPercents      map[string]decimal.Decimal
}

// PricedCart is a cart re-priced against the catalog.
type PricedCart struct {
	Lines        []PricedLine
	Subtotal     decimal.Decimal
	Shipping     decimal.Decimal
	Tax          decimal.Decimal
	Discount     decimal.Decimal
	DiscountCode string
	Total        decimal.Decimal
}

type PricedLine struct {
	Product  *model.Product
	Quantity int
}

func (l PricedLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderItems snapshots the lines for storage on an order.
func (c *PricedCart) OrderItems() []model.OrderItem {
	items := make([]model.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, model.OrderItem{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Price:       l.Product.Price,
			Quantity:    l.Quantity,
			Image:       l.Product.Image,
		})
	}
	return items
}

type Totals struct {
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

type Pricer interface {
	Price(ctx context.Context, items []dto.Item, discountCode string) (*PricedCart, error)
	Discount(subtotal decimal.Decimal, code string) (decimal.Decimal, string, error)
	Totals(subtotal, discount decimal.Decimal) Totals
	MinimumOrder() decimal.Decimal
}

type pricerImpl struct {
	cfg         PricingConfig
	productRepo repository.ProductRepository
}

func NewPricer(cfg PricingConfig, productRepo repository.ProductRepository) Pricer {
	return &pricerImpl{
		cfg:         cfg,
		productRepo: productRepo,
	}
}

// Price looks every item up in the catalog and computes the order totals.
// Client-side prices are never consulted. Repeated products are merged.
func (p *pricerImpl) Price(ctx context.Context, items []dto.Item, discountCode string) (*PricedCart, error) {
	if len(items) == 0 {
		return nil, Invalid("Cart is empty")
	}

	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		id := it.Ref()
		if it.Quantity <= 0 {
			return nil, Invalid(fmt.Sprintf("Invalid quantity for product %d", id))
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	found, err := p.productRepo.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	products := make(map[int64]*model.Product, len(found))
	for _, product := range found {
		products[product.ID] = product
	}
	for _, id := range ids {
		if products[id] == nil {
			return nil, Invalid(fmt.Sprintf("Product %d not found", id))
		}
	}

	// Each line is checked against the stock still unclaimed, so the merged
	// quantity never exceeds Stock and cannot overflow.
	quantities := make(map[int64]int, len(ids))
	for _, it := range items {
		product := products[it.Ref()]
		if it.Quantity > product.Stock-quantities[product.ID] {
			return nil, Invalid(fmt.Sprintf("Only %d of %s left in stock", product.Stock, product.Name))
		}
		quantities[product.ID] += it.Quantity
	}

	cart := &PricedCart{Subtotal: decimal.Zero}
	for _, id := range ids {
		product := products[id]
		qty := quantities[id]
		line := PricedLine{Product: product, Quantity: qty}
		cart.Lines = append(cart.Lines, line)
		cart.Subtotal = cart.Subtotal.Add(line.LineTotal())
	}

	discount, code, err := p.Discount(cart.Subtotal, discountCode)
	if err != nil {
		return nil, err
	}
	cart.Discount = discount
	cart.DiscountCode = code

	t := p.Totals(cart.Subtotal, discount)
	cart.Shipping = t.Shipping
	cart.Tax = t.Tax
	cart.Total = t.Total

	return cart, nil
}

// Discount resolves code to an amount off subtotal. An empty code is no
// discount; an unknown code is rejected.
func (p *pricerImpl) Discount(subtotal decimal.Decimal, code string) (decimal.Decimal, string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return decimal.Zero, "", nil
	}

	pct, ok := p.cfg.DiscountPercents[code]
	if !ok {
		return decimal.Zero, "", Invalid("Invalid discount code")
	}
	return subtotal.Mul(pct).Div(hundred).Round(2), code, nil
}

func (p *pricerImpl) Totals(subtotal, discount decimal.Decimal) Totals {
	shipping := p.cfg.ShippingFee
	if subtotal.GreaterThanOrEqual(p.cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(p.cfg.TaxRate).Round(2)

	total := subtotal.Add(shipping).Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{Shipping: shipping, Tax: tax, Total: total}
}

func (p *pricerImpl) MinimumOrder() decimal.Decimal {
	return p.cfg.MinimumOrder
}

// MinorUnits converts a major-unit amount (pounds) to the provider's minor
// units (pence).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
