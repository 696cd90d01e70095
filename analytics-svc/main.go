package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	httpapi "qrmenu/analytics-svc/internal/api/http"
	"qrmenu/analytics-svc/internal/service"
	"qrmenu/analytics-svc/internal/storage"
	"qrmenu/config"
	"qrmenu/pkg/logger"
)

type settings struct {
	Addr    string
	Env     string
	Window  int
	PlanTTL time.Duration
	TopTTL  time.Duration
	TZ      string
}

func loadSettings() settings {
	return settings{
		Addr:    ":" + config.Getenv("PORT", "8084"),
		Env:     config.Getenv("APP_ENV", "development"),
		Window:  config.GetenvInt("DASHBOARD_ORDER_WINDOW", service.DefaultWindow),
		PlanTTL: config.GetenvDuration("PLAN_CACHE_TTL", time.Minute),
		TopTTL:  config.GetenvDuration("TOP_PRODUCTS_CACHE_TTL", 5*time.Minute),
		TZ:      config.Getenv("DASHBOARD_TZ", "UTC"),
	}
}

func main() {
	config.Load()
	cfg := loadSettings()

	log := logger.New("analytics-svc", cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		log.Fatal("Invalid DASHBOARD_TZ", zap.String("tz", cfg.TZ), zap.Error(err))
	}

	db := config.MustInitPostgres()
	defer db.Close()

	rdb := config.MustInitRedis()
	defer rdb.Close()

	analytics := service.NewAnalyticsService(
		storage.NewPostgresRepository(db),
		storage.NewRedisCache(rdb, cfg.PlanTTL, cfg.TopTTL),
		cfg.Window,
	).WithLocation(loc)
	handler := httpapi.NewHandler(analytics)

	if err := httpapi.StartServer(ctx, cfg.Addr, httpapi.NewRouter(handler, log)); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
	log.Info("Analytics Service stopped")
}
