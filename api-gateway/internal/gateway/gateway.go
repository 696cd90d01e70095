package gateway

import (
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qrmenu/api-gateway/internal/auth"
	"qrmenu/pkg/httpx"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	MenuSvcURL      string
	OrderSvcURL     string
	FeedSvcURL      string
	AnalyticsSvcURL string
}

// Gateway forwards API calls to the service owning the path. Streamed
// responses go through a client without a timeout.
type Gateway struct {
	config Config
	client HTTPClient
	stream HTTPClient
}

func NewGateway(config Config, client, stream HTTPClient) *Gateway {
	if stream == nil {
		stream = client
	}
	return &Gateway{
		config: config,
		client: client,
		stream: stream,
	}
}

var hopHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"Te", "Trailer", "Transfer-Encoding", "Upgrade",
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httpx.Health("api-gateway")(w, r)
}

func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Backend resolves the service for path. The second result reports
// whether the response is a long-lived stream.
func (g *Gateway) Backend(path string) (string, bool) {
	switch {
	case strings.HasPrefix(path, "/api/menu/") && strings.HasSuffix(path, "/orders"):
		return g.config.OrderSvcURL, false
	case strings.HasPrefix(path, "/api/menu/"):
		return g.config.MenuSvcURL, false
	case under(path, "/api/orders"):
		return g.config.OrderSvcURL, false
	case under(path, "/api/feed"):
		return g.config.FeedSvcURL, true
	case under(path, "/api/dashboard"):
		return g.config.AnalyticsSvcURL, false
	case under(path, "/api/categories"), under(path, "/api/products"),
		under(path, "/api/tables"), under(path, "/api/profile"):
		return g.config.MenuSvcURL, false
	}
	return "", false
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	target, streaming := g.Backend(r.URL.Path)
	if target == "" {
		httpx.WriteError(w, http.StatusNotFound, "API route not found")
		return
	}
	client := g.client
	if streaming {
		client = g.stream
	}
	g.ProxyRequest(w, r, target, client)
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string, client HTTPClient) {
	url := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		zap.L().Error("failed to create proxy request", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	req.Header = r.Header.Clone()
	for _, h := range hopHeaders {
		req.Header.Del(h)
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := client.Do(req)
	if err != nil {
		zap.L().Error("proxy failed", zap.String("target", targetURL), zap.String("path", r.URL.Path), zap.Error(err))
		httpx.WriteError(w, http.StatusBadGateway, "upstream unavailable")
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	for _, h := range hopHeaders {
		w.Header().Del(h)
	}
	w.WriteHeader(resp.StatusCode)

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		copyStream(w, resp.Body)
		return
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		zap.L().Warn("failed to copy response", zap.Error(err))
	}
}

// copyStream flushes after every read so events reach the browser as
// they arrive.
func copyStream(w http.ResponseWriter, body io.Reader) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

// SetupRoutes mounts the public routes behind the rate limiter and the
// rest of /api behind requireOwner.
func (g *Gateway) SetupRoutes(authHandler *auth.Handler, requireOwner mux.MiddlewareFunc, limiter *RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.Use(limiter.Middleware)
	authHandler.RegisterRoutes(authRouter)

	public := r.PathPrefix("/api/menu/").Subrouter()
	public.Use(limiter.Middleware, auth.StripOwner)
	public.Methods("GET").PathPrefix("/").HandlerFunc(g.RouteHandler)
	public.Methods("POST").Path("/{token}/orders").HandlerFunc(g.RouteHandler)

	private := r.PathPrefix("/api/").Subrouter()
	private.Use(requireOwner)
	private.PathPrefix("/").HandlerFunc(g.RouteHandler)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not found")
	})
	return r
}
