package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dukerupert/julg/internal"
	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/events"
	"github.com/dukerupert/julg/internal/service"
	"github.com/dukerupert/julg/internal/storage"
	"github.com/dukerupert/julg/internal/telemetry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

func run() error {
	ctx := domain.NewContextWithRequestID(context.Background(), uuid.NewString())

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Enabled:     cfg.Sentry.Enabled,
		Environment: cfg.Env,
		Release:     cfg.Sentry.Release,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()
	defer telemetry.RecoverWithSentry()

	// Open the key-value store
	logger.Info("Opening store...", "driver", cfg.Store.Driver)
	store, err := storage.New(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("store initialization failed: %w", err)
	}
	defer store.Close()
	logger.Info("Store ready", "driver", cfg.Store.Driver)

	repo := service.NewRepository(store)

	if cfg.Seed.Enabled {
		err := service.EnsureDefaults(ctx, repo, service.SeedOptions{
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
			Logger:        logger,
		})
		if err != nil {
			return fmt.Errorf("seeding defaults failed: %w", err)
		}
	}

	// Event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.NatsUrl != "" {
		natsPublisher, err := events.ConnectNATS(cfg.Events.NatsUrl, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		publisher = natsPublisher
	}
	defer publisher.Close()

	metrics := telemetry.NewBusinessMetrics(prometheus.DefaultRegisterer, cfg.Metrics.Namespace)

	storefront := service.New(repo, service.Options{
		Logger:         logger,
		Metrics:        metrics,
		Publisher:      publisher,
		DecrementStock: cfg.Checkout.DecrementStock,
		DeliveryDays:   cfg.Checkout.DeliveryDays,
		DefaultCountry: cfg.Checkout.DefaultCountry,
	})

	// ==========================================================================
	// Report
	// ==========================================================================

	products, err := storefront.Catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	for _, p := range products {
		logger.Info("Product",
			"id", p.ID,
			"title", p.Title,
			"category", p.Category,
			"price", p.EffectivePrice().StringFixed(2),
			"stock", p.Stock,
		)
	}

	// The report runs with operator rights.
	adminCtx := domain.NewContextWithIdentity(ctx, &domain.Identity{
		Email: cfg.Seed.AdminEmail,
		Role:  domain.RoleAdmin,
	})

	stats, err := storefront.Admin.DashboardStats(adminCtx)
	if err != nil {
		return fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	logger.Info("Dashboard",
		"total_revenue", stats.TotalRevenue.StringFixed(2),
		"total_orders", stats.TotalOrders,
		"total_members", stats.TotalMembers,
		"total_products", stats.TotalProducts,
	)

	if err := telemetry.LogMetrics(prometheus.DefaultGatherer, cfg.Metrics.Namespace, logger); err != nil {
		return fmt.Errorf("failed to report metrics: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
