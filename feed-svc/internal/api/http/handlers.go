package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qrmenu/feed-svc/internal/service"
	"qrmenu/pkg/events"
	"qrmenu/pkg/httpx"
)

const (
	DefaultKeepalive = 30 * time.Second

	EventOrderCreated = "order-created"
	EventOrderStatus  = "order-status"
)

type Handler struct {
	Hub       service.FeedHub
	Keepalive time.Duration
}

func NewHandler(hub service.FeedHub, keepalive time.Duration) *Handler {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	return &Handler{Hub: hub, Keepalive: keepalive}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", httpx.Health("feed-svc")).Methods("GET")
	r.HandleFunc("/api/feed", h.stream).Methods("GET")
}

// feedMessage is the SSE data payload: the event plus the line the
// dashboard shows as a notification.
type feedMessage struct {
	events.OrderEvent
	Notification string `json:"notification"`
}

func eventName(evt events.OrderEvent) string {
	if evt.Type == events.TypeOrderCreated {
		return EventOrderCreated
	}
	return EventOrderStatus
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.OwnerID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := h.Hub.Subscribe(ownerID)
	defer h.Hub.Unsubscribe(sub)
	zap.L().Info("Feed subscriber connected", zap.String("owner_id", ownerID), zap.String("subscription_id", sub.ID()))

	fmt.Fprint(w, ": connected\n\nretry: 2000\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.Keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			zap.L().Info("Feed subscriber disconnected", zap.String("subscription_id", sub.ID()))
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case evt, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(feedMessage{OrderEvent: evt, Notification: evt.Notification()})
			if err != nil {
				zap.L().Error("Failed to encode feed event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName(evt), data)
			flusher.Flush()
		}
	}
}
