package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"storefront/internal/auth"
	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/email"
	"storefront/internal/logger"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/service"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "api",
		Short:         "Storefront HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  runServe,
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := client.InitDB(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := client.Migrate(db); err != nil {
				return err
			}
			fmt.Println("Migration complete")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		user auth.User
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a development access token signed with AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is not set")
			}
			token, err := auth.Sign(cfg.Auth.JWTSecret, cfg.Auth.Audience, user, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.ID, "user-id", "dev-user", "subject of the token")
	cmd.Flags().StringVar(&user.Email, "email", "dev@example.com", "email claim")
	cmd.Flags().StringVar(&user.Name, "name", "", "full name claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

func loadConfig() (*config.Config, error) {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if missing := cfg.MissingRequired(); len(missing) > 0 {
		log.Warn("missing configuration, checkout will fail", zap.Strings("vars", missing))
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment.Name,
			Release:     cfg.AppVersion,
		}); err != nil {
			log.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := client.InitDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := client.Migrate(db); err != nil {
		return err
	}

	limiter, closeStore, err := newLimiter(ctx, cfg.RateLimit, log)
	if err != nil {
		return err
	}
	defer closeStore()

	services, err := newServices(cfg, db, log)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, log, services, limiter)
	if err != nil {
		return err
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", zap.String("addr", serverAddr), zap.String("environment", cfg.Environment.Name))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-sigChan:
	}
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func newLimiter(ctx context.Context, cfg config.RateLimit, log *zap.Logger) (*ratelimit.Limiter, func(), error) {
	switch cfg.Store {
	case "", "memory":
		return ratelimit.New(ratelimit.NewMemoryStore(), cfg.MaxRequests, cfg.Window), func() {}, nil
	case "redis":
		rdb, err := client.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("rate limiting through redis")
		return ratelimit.New(ratelimit.NewRedisStore(rdb), cfg.MaxRequests, cfg.Window), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown rate limit store %q", cfg.Store)
	}
}

func newServices(cfg *config.Config, db *gorm.DB, log *zap.Logger) (server.Services, error) {
	discounts, err := cfg.Shop.DiscountPercents()
	if err != nil {
		return server.Services{}, err
	}

	var geo client.GeoClient
	if cfg.Google.PlacesAPIKey != "" {
		if geo, err = client.NewGoogleMapsClient(cfg.Google.PlacesAPIKey, ""); err != nil {
			return server.Services{}, err
		}
	} else {
		log.Warn("GOOGLE_PLACES_API_KEY not set, address lookup disabled")
	}

	paymentClient := client.NewStripeClient(&cfg.Stripe)

	productRepo := repository.NewProductRepository(cfg.Shop.ImageBaseURL)
	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	pricer := service.NewPricer(service.PricingConfig{
		FreeShippingThreshold: cfg.Shop.FreeShippingThreshold,
		ShippingFee:           cfg.Shop.ShippingFee,
		TaxRate:               cfg.Shop.TaxRate,
		MinimumOrder:          cfg.Shop.MinimumOrder,
		DiscountPercents:      discounts,
	}, productRepo)

	notifier := service.NewNotificationService(email.NewSender(cfg.Email, log))

	return server.Services{
		Product: service.NewProductService(productRepo),
		Cart:    service.NewCartService(pricer, productRepo),
		Payment: service.NewPaymentService(paymentClient, pricer, orderRepo, cfg.Stripe.Currency, cfg.SiteURL, log),
		Order:   service.NewOrderService(pricer, orderRepo, log),
		Address: service.NewAddressService(geo, log),
		Webhook: service.NewWebhookService(db, paymentClient, orderRepo, webhookEventRepo, notifier, log),
		Health:  service.NewHealthService(db, cfg),
	}, nil
}
