package model

import "github.com/shopspring/decimal"

// Product is a catalog entry. The catalog is a constant list compiled into the
// binary, not a database table.
type Product struct {
	ID          int64           `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Images      []string        `json:"images,omitempty"`
	Stock       int             `json:"stock"`
}

// Gallery returns the product's images, falling back to the main image.
func (p *Product) Gallery() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	return []string{p.Image}
}
