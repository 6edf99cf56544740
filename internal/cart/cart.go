// Package cart reads and writes the shopping_cart cookie that mirrors the
// browser's cart. Nothing about a cart is stored server-side.
package cart

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	CookieName = "shopping_cart"
	CookieTTL  = 7 * 24 * time.Hour
)

// Item is one cart line. The browser writes whole product objects into the
// cookie; only the id and quantity are read back.
type Item struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type Cart struct {
	Items []Item
}

func (c *Cart) index(id int64) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Add merges qty into an existing line for id or appends a new one.
func (c *Cart) Add(id int64, qty int) {
	if qty <= 0 {
		return
	}
	if i := c.index(id); i >= 0 {
		c.Items[i].Quantity += qty
		return
	}
	c.Items = append(c.Items, Item{ID: id, Quantity: qty})
}

func (c *Cart) Remove(id int64) {
	if i := c.index(id); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// SetQuantity overwrites the quantity of id. A quantity of zero or less
// removes the line.
func (c *Cart) SetQuantity(id int64, qty int) {
	if qty <= 0 {
		c.Remove(id)
		return
	}
	if i := c.index(id); i >= 0 {
		c.Items[i].Quantity = qty
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Decode parses a URL-encoded JSON cookie value. An empty value is an empty cart.
func Decode(value string) (*Cart, error) {
	if value == "" {
		return &Cart{}, nil
	}

	raw, err := url.QueryUnescape(value)
	if err != nil {
		return nil, fmt.Errorf("unescape cart cookie: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart cookie: %w", err)
	}
	return &Cart{Items: items}, nil
}

func (c *Cart) Encode() (string, error) {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return url.QueryEscape(string(b)), nil
}

// FromRequest reads the cart cookie. A missing or unreadable cookie yields
// an empty cart.
func FromRequest(r *http.Request) *Cart {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return &Cart{}
	}
	c, err := Decode(ck.Value)
	if err != nil {
		return &Cart{}
	}
	return c
}

// Cookie builds the Set-Cookie value for c.
func (c *Cart) Cookie(secure bool) (*http.Cookie, error) {
	value, err := c.Encode()
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(CookieTTL.Seconds()),
		Expires:  time.Now().Add(CookieTTL),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}
