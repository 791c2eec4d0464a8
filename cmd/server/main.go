package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/telemart/telemart/internal"
	"github.com/telemart/telemart/internal/billing"
	"github.com/telemart/telemart/internal/bot"
	"github.com/telemart/telemart/internal/cart"
	"github.com/telemart/telemart/internal/handler/api"
	"github.com/telemart/telemart/internal/handler/webhook"
	"github.com/telemart/telemart/internal/jobs"
	"github.com/telemart/telemart/internal/middleware"
	"github.com/telemart/telemart/internal/postgres"
	"github.com/telemart/telemart/internal/router"
	"github.com/telemart/telemart/internal/routes"
	"github.com/telemart/telemart/internal/telegram"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application queries
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	productStore := postgres.NewProductStore(pool)
	orderStore := postgres.NewOrderStore(pool)

	// Initialize Stripe billing provider
	billingConfig := billing.Config{
		SecretKey:      cfg.Stripe.SecretKey,
		PublishableKey: cfg.Stripe.PublishableKey,
		WebhookSecret:  cfg.Stripe.WebhookSecret,
	}
	provider, err := billing.NewStripeProvider(billingConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize billing provider: %w", err)
	}
	if billingConfig.IsTestMode() {
		logger.Warn("Stripe is running in test mode")
	}

	// Cart persistence
	cartStorage, err := cart.NewFileStorage(cfg.Cart.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to initialize cart storage: %w", err)
	}
	carts := cart.NewManager(cartStorage, logger)

	// Telegram: init data verification and the bot
	verifier := telegram.NewVerifier(cfg.Telegram.BotToken)
	botAPI := telegram.NewBotAPI(cfg.Telegram.BotToken)
	botService := bot.NewService(botAPI, cfg.Telegram.MiniAppURL, logger)

	// HTTP surface
	metrics := middleware.NewMetrics("telemart")
	r := router.New(
		middleware.RequestID,
		metrics.Middleware,
		router.Recovery(logger),
		router.Logger(logger),
		router.CORS(cfg.Frontend.AllowedOrigins),
	)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	r.Handle(http.MethodGet, "/metrics", metrics.Handler())

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		ProductHandler: api.NewProductHandler(productStore),
		CartHandler:    api.NewCartHandler(carts, productStore),
		OrderHandler:   api.NewOrderHandler(orderStore, carts),
		PaymentHandler: api.NewPaymentHandler(provider),
		TelegramAuth:   middleware.TelegramAuth(verifier),
		RequireUser:    middleware.RequireTelegramUser,
	})
	routes.RegisterWebhookRoutes(r, routes.WebhookDeps{
		StripeHandler:   webhook.NewStripeHandler(provider, orderStore, cfg.Stripe.WebhookSecret, logger),
		TelegramHandler: webhook.NewTelegramHandler(botService, cfg.Telegram.BotToken, logger),
	})

	if cfg.Frontend.StaticDir != "" {
		r.Static("/", cfg.Frontend.StaticDir)
	}

	// Bot: webhook in production, long polling otherwise
	if cfg.Env == "prod" && cfg.Telegram.WebhookURL != "" {
		webhookURL := fmt.Sprintf("%s/api/webhook/telegram/%s", cfg.Telegram.WebhookURL, cfg.Telegram.BotToken)
		if err := botAPI.SetWebhook(ctx, webhookURL); err != nil {
			return fmt.Errorf("failed to set telegram webhook: %w", err)
		}
		logger.Info("Telegram webhook registered")
	} else {
		go func() {
			if err := botService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("bot polling stopped", "error", err)
			}
		}()
		logger.Info("Telegram bot polling started")
	}

	if err := botService.SetupFeatures(ctx); err != nil {
		logger.Warn("bot feature setup skipped", "error", err)
	}

	// Keep-alive self-ping for hosts that idle out inactive services
	if cfg.KeepAlive.Enabled {
		keepAlive := jobs.NewKeepAlive(
			cfg.BaseURL+"/health",
			time.Duration(cfg.KeepAlive.IntervalMinutes)*time.Minute,
			logger,
		)
		go keepAlive.Run(ctx)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
