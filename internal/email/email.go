// Package email renders and delivers transactional mail.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"storefront/internal/model"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return "£" + d.StringFixed(2) },
	"join": func(sep string, parts ...string) string {
		kept := parts[:0:0]
		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}
		return strings.Join(kept, sep)
	},
}).ParseFS(templateFS, "templates/*.html"))

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type orderConfirmationData struct {
	*model.Order
	ShortID      string
	CustomerName string
	Address      *model.ShippingAddress
}

// OrderConfirmation renders the receipt sent once an order is paid.
func OrderConfirmation(o *model.Order) (Message, error) {
	data := orderConfirmationData{
		Order:        o,
		ShortID:      shortID(o.ID),
		CustomerName: o.UserName,
	}
	if data.CustomerName == "" {
		data.CustomerName = "Customer"
	}
	if !o.ShippingAddress.IsZero() {
		data.Address = &o.ShippingAddress
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "order_confirmation.html", data); err != nil {
		return Message{}, fmt.Errorf("render order confirmation: %w", err)
	}

	return Message{
		To:      o.UserEmail,
		Subject: "Order Confirmation - #" + data.ShortID,
		HTML:    buf.String(),
	}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
