package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"qrmenu/config"
	httpapi "qrmenu/order-svc/internal/api/http"
	"qrmenu/order-svc/internal/service"
	"qrmenu/order-svc/internal/storage"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/schema"
)

type settings struct {
	Addr           string
	Env            string
	Topic          string
	IdempotencyTTL time.Duration
}

func loadSettings() settings {
	return settings{
		Addr:           ":" + config.Getenv("PORT", "8082"),
		Env:            config.Getenv("APP_ENV", "development"),
		Topic:          config.OrdersTopic(),
		IdempotencyTTL: config.GetenvDuration("ORDER_IDEMPOTENCY_TTL", 24*time.Hour),
	}
}

func main() {
	config.Load()
	cfg := loadSettings()

	log := logger.New("order-svc", cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres()
	defer db.Close()
	if err := schema.EnsureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	rdb := config.MustInitRedis()
	defer rdb.Close()

	writer := config.NewKafkaWriter(cfg.Topic)
	defer writer.Close()

	orders := service.NewOrderService(
		storage.NewPostgresRepository(db),
		storage.NewRedisIdempotency(rdb, cfg.IdempotencyTTL),
		storage.NewKafkaPublisher(writer),
	)
	handler := httpapi.NewHandler(orders)

	if err := httpapi.StartServer(ctx, cfg.Addr, httpapi.NewRouter(handler, log)); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
	log.Info("Order Service stopped")
}
