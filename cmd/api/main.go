package main

import (
	"context"
	"log"
	"time"

	"shipone/internal/core/cache"
	"shipone/internal/core/config"
	"shipone/internal/core/logger"
	"shipone/internal/core/server"
	analyticsadapter "shipone/internal/features/analytics/adapters"
	analyticshandler "shipone/internal/features/analytics/handler"
	analyticsports "shipone/internal/features/analytics/ports"
	analyticsservice "shipone/internal/features/analytics/service"
	notifyservice "shipone/internal/features/notifications/service"
	shipmentadapter "shipone/internal/features/shipments/adapters"
	shipmenthandler "shipone/internal/features/shipments/handler"
	"shipone/internal/features/shipments/ports"
	shipmentservice "shipone/internal/features/shipments/service"

	"go.uber.org/zap"
)

// @title ShipOne Logistics API
// @version 1.0
// @description Shipment lifecycle and tracking-event engine: creation, event admission, tracking lookups, and dashboard analytics.
// @contact.name API Support
// @contact.email support@shipone.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()

	// Shipment store
	var store ports.ShipmentStore
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := shipmentadapter.OpenPostgres(cfg.Storage.DatabaseURL)
		if err != nil {
			l.Fatal("Postgres connection failed", zap.Error(err))
		}
		pgStore := shipmentadapter.NewPostgresShipmentStore(db)
		if err := pgStore.Migrate(ctx); err != nil {
			l.Fatal("Postgres migration failed", zap.Error(err))
		}
		store = pgStore
		l.Info("Postgres connection verified")
	default:
		store = shipmentadapter.NewMemoryShipmentStore()
	}

	// Analytics snapshot publishing (optional)
	var publisher analyticsports.SnapshotPublisher
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
		if err != nil {
			l.Fatal("Redis setup failed", zap.Error(err))
		}
		if err := redisCache.Ping(ctx); err != nil {
			l.Fatal("Redis ping failed", zap.Error(err))
		}
		publisher = analyticsadapter.NewRedisSnapshotPublisher(redisCache)
		l.Info("Redis connection verified")
	}

	// Analytics Aggregator, rebuilt from the store at every boot
	aggregator := analyticsservice.NewAggregator(publisher)
	if err := aggregator.Rebuild(ctx, store); err != nil {
		l.Fatal("Analytics rebuild failed", zap.Error(err))
	}

	// Registry observers: analytics always, webhook notifications when configured
	observers := []ports.StatusObserver{aggregator}
	if cfg.Notifications.WebhookURL != "" {
		notifier := notifyservice.NewWebhookNotifier(
			cfg.Notifications.WebhookURL,
			time.Duration(cfg.Notifications.TimeoutSeconds)*time.Second,
		)
		observers = append(observers, notifier)
		l.Info("Webhook notifications enabled")
	}

	// Shipment Registry & Handlers
	generator := shipmentadapter.NewTrackingNumberGenerator(cfg.Tracking.NumberPrefix)
	shipmentSvc := shipmentservice.NewShipmentService(store, generator, observers...)
	shipmentHdl := shipmenthandler.NewShipmentHandler(shipmentSvc)
	analyticsHdl := analyticshandler.NewAnalyticsHandler(aggregator)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Post("/shipments", shipmentHdl.CreateShipment)
	srv.App.Get("/shipments", shipmentHdl.ListShipments)
	srv.App.Get("/shipments/:number", shipmentHdl.GetShipment)
	srv.App.Post("/shipments/:number/events", shipmentHdl.AdmitEvent)
	srv.App.Get("/analytics/dashboard", analyticsHdl.GetDashboard)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
