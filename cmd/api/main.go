package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gatecrest/boxoffice-backend/api/routes"
	"github.com/gatecrest/boxoffice-backend/internal/catalog"
	"github.com/gatecrest/boxoffice-backend/internal/documents"
	"github.com/gatecrest/boxoffice-backend/internal/fulfillment"
	"github.com/gatecrest/boxoffice-backend/internal/inventory"
	"github.com/gatecrest/boxoffice-backend/internal/orders"
	"github.com/gatecrest/boxoffice-backend/internal/transfers"
	"github.com/gatecrest/boxoffice-backend/pkg/config"
	"github.com/gatecrest/boxoffice-backend/pkg/db"
	"github.com/gatecrest/boxoffice-backend/pkg/instance"
	"github.com/gatecrest/boxoffice-backend/pkg/logger"
	"github.com/gatecrest/boxoffice-backend/pkg/metrics"
	"github.com/gatecrest/boxoffice-backend/pkg/migrate"
	"github.com/gatecrest/boxoffice-backend/pkg/redis"
	"github.com/gatecrest/boxoffice-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(ordersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	ledger, err := inventory.NewLedger(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory ledger", err)
		os.Exit(1)
	}

	transfersSvc, err := transfers.NewService(transfers.ServiceParams{
		Repo:        ordersRepo,
		Gateway:     stripeClient,
		Destination: cfg.Payouts.DestinationAccount,
		FeePercent:  cfg.Payouts.FeePercent,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer service", err)
		os.Exit(1)
	}

	fulfillmentSvc, err := fulfillment.NewService(fulfillment.ServiceParams{
		Orders:                  ordersSvc,
		OrdersRepo:              ordersRepo,
		Catalog:                 catalog.NewRepository(dbClient.DB()),
		Ledger:                  ledger,
		Transfers:               transfersSvc,
		Documents:               documents.NewJSONGenerator(logg),
		Notifier:                documents.NewLogNotifier(logg),
		Metrics:                 webhookMetrics,
		Logger:                  logg,
		FeePercent:              cfg.Payouts.FeePercent,
		DefaultBundleMultiplier: cfg.Tickets.DefaultBundleMultiplier,
		EmbedScanPayload:        cfg.Documents.EmbedScanPayload,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	webhookGuard, err := fulfillment.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:             cfg,
			Logger:             logg,
			DBPinger:           dbClient,
			RedisPinger:        redisClient,
			StripeClient:       stripeClient,
			FulfillmentService: fulfillmentSvc,
			WebhookGuard:       webhookGuard,
			MetricsRegistry:    registry,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			_ = server.Close()
		}
	}
}
