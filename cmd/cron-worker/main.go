package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/cron"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/payments"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/statistics"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/bigquery"
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

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	gateway, err := sslcommerz.NewFromConfig(cfg.SSLCommerz)
	if err != nil {
		logg.Error(context.Background(), "failed to create sslcommerz client", err)
		os.Exit(1)
	}

	paymentsRepo := payments.NewRepository(dbClient.DB())
	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:       paymentsRepo,
		Tx:         dbClient,
		Outbox:     outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Gateway:    gateway,
		SSLCommerz: cfg.SSLCommerz,
		Storefront: cfg.Storefront,
		Metrics:    metrics.NewPaymentMetrics(prometheus.DefaultRegisterer),
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	reconcileJob, err := cron.NewPaymentReconcileJob(cron.PaymentReconcileJobParams{
		Logger:        logg,
		PendingReader: paymentsRepo,
		Gateway:       gateway,
		Confirmer:     paymentService,
		MinAge:        cfg.Reconcile.MinAge,
		BatchSize:     cfg.Reconcile.BatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile job", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(reconcileJob)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron registry", err)
		os.Exit(1)
	}

	if cfg.BigQuery.Enabled() {
		bqClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap bigquery", err)
			os.Exit(1)
		}
		defer func() {
			if err := bqClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery", err)
			}
		}()
		if err := bqClient.EnsureTable(context.Background(), bqClient.SnapshotsTable(), statistics.SnapshotRow{}, "taken_at"); err != nil {
			logg.Error(context.Background(), "failed to ensure snapshot table", err)
			os.Exit(1)
		}
		inserter, err := bigquery.NewRetryingInserter(bqClient, bigquery.RetryPolicy{})
		if err != nil {
			logg.Error(context.Background(), "failed to create bigquery inserter", err)
			os.Exit(1)
		}
		statsService, err := statistics.NewService(statistics.NewRepository(dbClient.DB()), time.Now)
		if err != nil {
			logg.Error(context.Background(), "failed to create statistics service", err)
			os.Exit(1)
		}
		snapshotJob, err := cron.NewSalesSnapshotJob(cron.SalesSnapshotJobParams{
			Logger:     logg,
			Statistics: statsService,
			Inserter:   inserter,
			Table:      bqClient.SnapshotsTable(),
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create sales snapshot job", err)
			os.Exit(1)
		}
		if err := registry.Register(snapshotJob); err != nil {
			logg.Error(context.Background(), "failed to register sales snapshot job", err)
			os.Exit(1)
		}
	}

	lock, err := cron.NewCycleLock(redisClient, redisClient.LockKey("cron"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Reconcile.Interval,
		JobTimeout: cfg.Reconcile.JobTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
		"jobs":        len(registry.Jobs()),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
