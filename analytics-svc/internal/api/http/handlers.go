package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qrmenu/analytics-svc/internal/service"
	"qrmenu/pkg/httpx"
	"qrmenu/pkg/plan"
)

type Handler struct {
	Analytics service.AnalyticsInterface
}

func NewHandler(svc service.AnalyticsInterface) *Handler {
	return &Handler{Analytics: svc}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", httpx.Health("analytics-svc")).Methods("GET")
	r.HandleFunc("/api/dashboard/summary", h.getSummary).Methods("GET")
	r.HandleFunc("/api/dashboard/top-products", h.getTopProducts).Methods("GET")
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, plan.ErrPremiumRequired):
		httpx.WriteError(w, http.StatusForbidden, "analytics require the premium plan")
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.OwnerID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.Analytics.Summary(r.Context(), ownerID, r.URL.Query().Get("tz"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) getTopProducts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.OwnerID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}

	top, err := h.Analytics.TopProducts(r.Context(), ownerID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, top)
}
