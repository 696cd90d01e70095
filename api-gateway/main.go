package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"qrmenu/api-gateway/internal/auth"
	"qrmenu/api-gateway/internal/gateway"
	"qrmenu/config"
	"qrmenu/pkg/httpx"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/schema"
)

const devJWTSecret = "dev-secret-change-me"

type settings struct {
	Addr           string
	Env            string
	Services       gateway.Config
	JWTSecret      string
	TokenTTL       time.Duration
	AutoConfirm    bool
	PublicRPM      int
	PublicBurst    int
	TrustForwarded bool
	UpstreamTTL    time.Duration
}

func loadSettings() settings {
	return settings{
		Addr: ":" + config.Getenv("PORT", "8080"),
		Env:  config.Getenv("APP_ENV", "development"),
		Services: gateway.Config{
			MenuSvcURL:      config.Getenv("MENU_SVC_URL", "http://localhost:8081"),
			OrderSvcURL:     config.Getenv("ORDER_SVC_URL", "http://localhost:8082"),
			FeedSvcURL:      config.Getenv("FEED_SVC_URL", "http://localhost:8083"),
			AnalyticsSvcURL: config.Getenv("ANALYTICS_SVC_URL", "http://localhost:8084"),
		},
		JWTSecret:      config.Getenv("JWT_SECRET", ""),
		TokenTTL:       config.GetenvDuration("JWT_TTL", auth.DefaultTokenTTL),
		AutoConfirm:    config.GetenvBool("AUTH_AUTO_CONFIRM", false),
		PublicRPM:      config.GetenvInt("PUBLIC_RATE_PER_MINUTE", 120),
		PublicBurst:    config.GetenvInt("PUBLIC_RATE_BURST", 30),
		TrustForwarded: config.GetenvBool("TRUST_FORWARDED_FOR", false),
		UpstreamTTL:    config.GetenvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
	}
}

func main() {
	config.Load()
	cfg := loadSettings()

	log := logger.New("api-gateway", cfg.Env)
	defer log.Sync()

	if cfg.PublicRPM <= 0 {
		log.Fatal("PUBLIC_RATE_PER_MINUTE must be positive", zap.Int("value", cfg.PublicRPM))
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			log.Fatal("JWT_SECRET must be set in production")
		}
		log.Warn("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres()
	defer db.Close()
	if err := schema.EnsureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	rdb := config.MustInitRedis()
	defer rdb.Close()

	authService := auth.NewService(
		auth.NewPostgresStore(db),
		auth.NewRedisDenylist(rdb),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		cfg.AutoConfirm,
	)

	limiter := gateway.NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.PublicRPM)), cfg.PublicBurst, cfg.TrustForwarded)
	go limiter.Run(ctx, time.Minute, 10*time.Minute)

	gw := gateway.NewGateway(cfg.Services, &http.Client{Timeout: cfg.UpstreamTTL}, &http.Client{})
	r := gw.SetupRoutes(auth.NewHandler(authService), authService.RequireOwner, limiter)
	r.Use(logger.RequestLogger(log))

	if err := httpx.Serve(ctx, "API Gateway", cfg.Addr, cors.New(httpx.CORSOptions()).Handler(r)); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
	log.Info("API Gateway stopped")
}
