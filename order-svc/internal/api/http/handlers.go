package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/order-svc/internal/service"
	"qrmenu/pkg/httpx"
)

const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	Orders service.OrderServiceInterface
}

func NewHandler(orders service.OrderServiceInterface) *Handler {
	return &Handler{Orders: orders}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", httpx.Health("order-svc")).Methods("GET")

	r.HandleFunc("/api/menu/{token}/orders", h.submitOrder).Methods("POST")

	r.HandleFunc("/api/orders", h.getOrders).Methods("GET")
	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/status", h.updateStatus).Methods("PATCH", "PUT")
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTableNotFound):
		httpx.WriteError(w, http.StatusNotFound, "menu not found")
	case errors.Is(err, service.ErrOrderNotFound):
		httpx.WriteError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrSubmitInProgress):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg := "internal error"
		if r.Method != http.MethodGet {
			msg = "failed to save order, please try again"
		}
		httpx.WriteError(w, http.StatusInternalServerError, msg)
	}
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format: "+err.Error())
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get(IdempotencyHeader)
	}

	order, err := h.Orders.Submit(r.Context(), mux.Vars(r)["token"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.OwnerID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := domain.ListFilter{}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			httpx.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}
	filter.ActiveOnly, _ = strconv.ParseBool(q.Get("active"))

	orders, err := h.Orders.List(r.Context(), ownerID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.OwnerID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	order, err := h.Orders.Get(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.OwnerID(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in domain.StatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format: "+err.Error())
		return
	}

	order, err := h.Orders.UpdateStatus(r.Context(), ownerID, mux.Vars(r)["id"], in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}
