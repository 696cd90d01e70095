package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"qrmenu/pkg/httpx"
	"qrmenu/pkg/logger"
)

func NewRouter(handler *Handler, log *zap.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(logger.RequestLogger(log))
	handler.RegisterRoutes(r)
	return cors.New(httpx.CORSOptions()).Handler(r)
}

func StartServer(ctx context.Context, addr string, handler http.Handler) error {
	return httpx.Serve(ctx, "Feed Service", addr, handler)
}
