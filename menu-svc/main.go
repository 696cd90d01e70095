package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"qrmenu/config"
	httpapi "qrmenu/menu-svc/internal/api/http"
	"qrmenu/menu-svc/internal/service"
	"qrmenu/menu-svc/internal/storage"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/schema"
)

type settings struct {
	Addr          string
	Env           string
	PublicMenuURL string
	Currency      string
	Bucket        string
	PublicS3URL   string
	MenuCacheTTL  time.Duration
}

func loadSettings() settings {
	return settings{
		Addr:          ":" + config.Getenv("PORT", "8081"),
		Env:           config.Getenv("APP_ENV", "development"),
		PublicMenuURL: config.Getenv("PUBLIC_MENU_URL", "http://localhost:3000"),
		Currency:      config.Getenv("CURRENCY", "RSD"),
		Bucket:        config.Getenv("AWS_S3_BUCKET", "qrmenu-uploads"),
		PublicS3URL:   config.Getenv("AWS_S3_PUBLIC_URL", ""),
		MenuCacheTTL:  config.GetenvDuration("MENU_CACHE_TTL", 5*time.Minute),
	}
}

func main() {
	config.Load()
	cfg := loadSettings()

	log := logger.New("menu-svc", cfg.Env)
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

	repo := storage.NewPostgresRepository(db)
	cache := storage.NewRedisCache(rdb, cfg.MenuCacheTTL)
	objects := storage.NewS3Store(config.MustInitS3(ctx), cfg.Bucket, cfg.PublicS3URL)
	qr := service.DefaultQRGenerator{BaseURL: cfg.PublicMenuURL}

	handler := httpapi.NewHandler(
		service.NewCatalogService(repo, repo, cache, objects),
		service.NewTableService(repo, cache, qr),
		service.NewProfileService(repo, cache, objects),
		service.NewMenuService(repo, repo, repo, repo, cache, cfg.Currency),
	)

	if err := httpapi.StartServer(ctx, cfg.Addr, httpapi.NewRouter(handler, log)); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
	log.Info("Menu Service stopped")
}
