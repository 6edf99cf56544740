package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	SiteURL     string `env:"SITE_URL" envDefault:"http://localhost:3000"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://storefront.db"`
	AppVersion  string `env:"APP_VERSION" envDefault:"unknown"`
	SentryDSN   string `env:"SENTRY_DSN"`

	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Auth      Auth      `envPrefix:"AUTH_"`
	Google    Google    `envPrefix:"GOOGLE_"`
	Shop      Shop      `envPrefix:"SHOP_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
	Email     Email     `envPrefix:"EMAIL_"`
}

type Stripe struct {
	SecretKey      string `env:"SECRET_KEY"`
	PublishableKey string `env:"PUBLISHABLE_KEY"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`
	Currency       string `env:"CURRENCY" envDefault:"gbp"`
}

// Auth holds the settings shared with the external auth provider that issues
// access tokens. Sessions themselves are never managed here.
type Auth struct {
	JWTSecret  string `env:"JWT_SECRET"`
	Audience   string `env:"AUDIENCE" envDefault:"authenticated"`
	CookieName string `env:"COOKIE_NAME" envDefault:"sb-access-token"`
}

type Google struct {
	PlacesAPIKey string `env:"PLACES_API_KEY"`
}

type Shop struct {
	FreeShippingThreshold decimal.Decimal   `env:"FREE_SHIPPING_THRESHOLD" envDefault:"49"`
	ShippingFee           decimal.Decimal   `env:"SHIPPING_FEE" envDefault:"2.95"`
	TaxRate               decimal.Decimal   `env:"TAX_RATE" envDefault:"0"`
	MinimumOrder          decimal.Decimal   `env:"MINIMUM_ORDER" envDefault:"0.30"`
	DiscountCodes         map[string]string `env:"DISCOUNT_CODES" envDefault:"SAVE10:10"`
	ImageBaseURL          string            `env:"IMAGE_BASE_URL" envDefault:"https://res.cloudinary.com/drhvaqfux/image/upload"`
}

type RateLimit struct {
	MaxRequests int           `env:"MAX_REQUESTS" envDefault:"100"`
	Window      time.Duration `env:"WINDOW" envDefault:"1m"`
	Store       string        `env:"STORE" envDefault:"memory"` // memory, redis
	RedisURL    string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

type Email struct {
	From         string `env:"FROM" envDefault:"orders@reef-forge.uk"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

// DiscountPercents parses Shop.DiscountCodes into upper-cased codes mapped to
// a percentage off the subtotal.
func (s Shop) DiscountPercents() (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(s.DiscountCodes))
	for code, raw := range s.DiscountCodes {
		pct, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("discount code %s: %w", code, err)
		}
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("discount code %s: percentage %s out of range", code, pct)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = pct
	}
	return out, nil
}

// MissingRequired lists the environment variables the storefront cannot serve
// checkout traffic without.
func (c *Config) MissingRequired() []string {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.Stripe.PublishableKey == "" {
		missing = append(missing, "STRIPE_PUBLISHABLE_KEY")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	return missing
}
