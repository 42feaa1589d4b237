package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Mahbub-Sajon/srs-publications-server/api/routes"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/cart"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/orders"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/payments"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/products"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/statistics"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/users"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/config"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/instance"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/metrics"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/migrate"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/redis"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/sslcommerz"
)

const shutdownTimeout = 15 * time.Second

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

	deps := routes.Dependencies{
		DB:       dbClient,
		Gatherer: prometheus.DefaultGatherer,
	}

	var ipnGuard redis.DedupeStore
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		deps.Redis = redisClient
		deps.Idempotency = redisClient
		deps.RateLimiter = redisClient
		ipnGuard = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured; idempotency, rate limits and ipn dedupe disabled")
	}

	gateway, err := sslcommerz.NewFromConfig(cfg.SSLCommerz)
	if err != nil {
		logg.Error(context.Background(), "failed to create sslcommerz client", err)
		os.Exit(1)
	}

	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	deps.Users = mustService[users.Service](logg, "users")(users.NewService(users.NewRepository(dbClient.DB())))
	deps.Products = mustService[products.Service](logg, "products")(products.NewService(products.NewRepository(dbClient.DB())))
	deps.Cart = mustService[cart.Service](logg, "cart")(cart.NewService(cart.NewRepository(dbClient.DB())))
	deps.Orders = mustService[orders.Service](logg, "orders")(orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, emitter, cfg.Pricing.DiscountRate))
	deps.Statistics = mustService[statistics.Service](logg, "statistics")(statistics.NewService(statistics.NewRepository(dbClient.DB()), time.Now))
	deps.Payments = mustService[payments.Service](logg, "payments")(payments.NewService(payments.ServiceParams{
		Repo:       payments.NewRepository(dbClient.DB()),
		Tx:         dbClient,
		Outbox:     emitter,
		Gateway:    gateway,
		SSLCommerz: cfg.SSLCommerz,
		Storefront: cfg.Storefront,
		IPNGuard:   ipnGuard,
		IPNTTL:     cfg.Idempotency.IPNTTL,
		Metrics:    metrics.NewPaymentMetrics(prometheus.DefaultRegisterer),
		Logger:     logg,
	}))

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"sandbox":  cfg.SSLCommerz.Sandbox,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

// mustService exits when a service constructor fails.
func mustService[T any](logg *logger.Logger, name string) func(T, error) T {
	return func(svc T, err error) T {
		if err != nil {
			logg.Error(context.Background(), "failed to create "+name+" service", err)
			os.Exit(1)
		}
		return svc
	}
}
