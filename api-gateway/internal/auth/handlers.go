package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qrmenu/pkg/httpx"
)

type Handler struct {
	Auth *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Auth: svc}
}

// RegisterRoutes expects r to be mounted at /api/auth.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/signup", h.signUp).Methods("POST")
	r.HandleFunc("/confirm", h.confirm).Methods("GET", "POST")
	r.HandleFunc("/signin", h.signIn).Methods("POST")
	r.HandleFunc("/signout", h.signOut).Methods("POST")
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenRevoked):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotConfirmed):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	default:
		zap.L().Error("auth request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format: "+err.Error())
		return false
	}
	return true
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var in SignUpInput
	if !decode(w, r, &in) {
		return
	}
	result, err := h.Auth.SignUp(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	in := ConfirmInput{Token: r.URL.Query().Get("token")}
	if in.Token == "" && r.Method == http.MethodPost {
		if !decode(w, r, &in) {
			return
		}
	}
	if err := h.Auth.Confirm(r.Context(), in.Token); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": StatusConfirmed})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var in SignInInput
	if !decode(w, r, &in) {
		return
	}
	token, err := h.Auth.SignIn(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, token)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	token, ok := BearerToken(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.Auth.SignOut(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
