package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"qrmenu/pkg/httpx"
)

// StripOwner drops any owner header a client sent. Downstream services
// trust that header, so only the gateway may set it.
func StripOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(httpx.OwnerHeader)
		next.ServeHTTP(w, r)
	})
}

// RequireOwner admits requests carrying a valid bearer token and scopes
// them to the token's owner.
func (s *Service) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(httpx.OwnerHeader)

		token, ok := BearerToken(r)
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ownerID, err := s.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenRevoked) {
				httpx.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}
			zap.L().Error("authentication failed", zap.Error(err))
			httpx.WriteError(w, http.StatusServiceUnavailable, "authentication unavailable")
			return
		}

		r.Header.Set(httpx.OwnerHeader, ownerID)
		next.ServeHTTP(w, r)
	})
}
