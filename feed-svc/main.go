package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qrmenu/config"
	httpapi "qrmenu/feed-svc/internal/api/http"
	"qrmenu/feed-svc/internal/hub"
	"qrmenu/feed-svc/internal/service"
	"qrmenu/pkg/logger"
)

type settings struct {
	Addr      string
	Env       string
	Topic     string
	Buffer    int
	Keepalive time.Duration
}

func loadSettings() settings {
	return settings{
		Addr:      ":" + config.Getenv("PORT", "8083"),
		Env:       config.Getenv("APP_ENV", "development"),
		Topic:     config.OrdersTopic(),
		Buffer:    config.GetenvInt("FEED_BUFFER", hub.DefaultBuffer),
		Keepalive: config.GetenvDuration("FEED_KEEPALIVE", httpapi.DefaultKeepalive),
	}
}

func main() {
	config.Load()
	cfg := loadSettings()

	log := logger.New("feed-svc", cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := hub.New(cfg.Buffer)

	reader := config.NewKafkaTailReader(cfg.Topic, uuid.NewString())
	defer reader.Close()
	go service.NewConsumer(reader, feed).Start(ctx)

	// Open streams only end when their subscription closes, so the hub has
	// to go before the server drains.
	go func() {
		<-ctx.Done()
		feed.Close()
	}()

	handler := httpapi.NewHandler(feed, cfg.Keepalive)
	if err := httpapi.StartServer(ctx, cfg.Addr, httpapi.NewRouter(handler, log)); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
	log.Info("Feed Service stopped")
}
