package server

import (
	"context"
	"net/http"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/ratelimit"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Services are the business services the HTTP layer exposes.
type Services struct {
	Product service.ProductService
	Cart    service.CartService
	Payment service.PaymentService
	Order   service.OrderService
	Address service.AddressService
	Webhook service.WebhookService
	Health  service.HealthService
}

type Server struct {
	echo           *echo.Echo
	log            *zap.Logger
	limiter        *ratelimit.Limiter
	authMiddleware echo.MiddlewareFunc

	productHandler *handler.ProductHandler
	cartHandler    *handler.CartHandler
	paymentHandler *handler.PaymentHandler
	orderHandler   *handler.OrderHandler
	addressHandler *handler.AddressHandler
	webhookHandler *handler.WebhookHandler
	healthHandler  *handler.HealthHandler
}

func NewServer(cfg *config.Config, log *zap.Logger, services Services, limiter *ratelimit.Limiter) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	v, err := handler.NewValidator()
	if err != nil {
		return nil, err
	}
	e.Validator = v
	e.HTTPErrorHandler = newErrorHandler(log)

	if cfg.Environment.IsProduction() {
		e.Pre(middleware.RedirectWWW())
	}
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomw.Recover())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BlockBots())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.SiteURL},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))

	s := &Server{
		echo:           e,
		log:            log,
		limiter:        limiter,
		authMiddleware: middleware.Auth(auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience), cfg.Auth.CookieName),

		productHandler: handler.NewProductHandler(services.Product),
		cartHandler:    handler.NewCartHandler(services.Cart, cfg.Environment.IsProduction()),
		paymentHandler: handler.NewPaymentHandler(services.Payment),
		orderHandler:   handler.NewOrderHandler(services.Order),
		addressHandler: handler.NewAddressHandler(services.Address),
		webhookHandler: handler.NewWebhookHandler(services.Webhook),
		healthHandler:  handler.NewHealthHandler(services.Health),
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api", middleware.RateLimit(s.limiter, s.log))

	api.GET("/health", s.healthHandler.Get)
	api.HEAD("/health", s.healthHandler.Head)

	// -------- catalog --------
	api.GET("/products", s.productHandler.List)
	api.GET("/products/:id", s.productHandler.Get)
	api.GET("/products/:id/recommended", s.productHandler.Recommended)

	// -------- cart --------
	api.GET("/cart", s.cartHandler.Get)
	api.DELETE("/cart", s.cartHandler.Clear)
	api.POST("/cart/items", s.cartHandler.AddItem)
	api.PATCH("/cart/items/:id", s.cartHandler.UpdateItem)
	api.DELETE("/cart/items/:id", s.cartHandler.RemoveItem)
	api.POST("/cart/quote", s.cartHandler.Quote)

	api.POST("/address/lookup", s.addressHandler.Lookup)

	// -------- payment provider callbacks --------
	api.POST("/webhooks/stripe", s.webhookHandler.Stripe)

	// -------- signed-in --------
	authed := api.Group("", s.authMiddleware)
	authed.POST("/create-payment-intent", s.paymentHandler.CreatePaymentIntent)
	authed.POST("/update-payment-intent", s.paymentHandler.UpdatePaymentIntent)
	authed.POST("/checkout", s.paymentHandler.Checkout)
	authed.GET("/orders", s.orderHandler.List)
	authed.POST("/orders", s.orderHandler.Create)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
