package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ostkru/trading/db"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext возвращает пользователя, положенного auth middleware
func UserFromContext(ctx context.Context) (*db.User, bool) {
	u, ok := ctx.Value(userContextKey).(*db.User)
	return u, ok
}

// apiKeyFromRequest достает API ключ из Authorization: Bearer или X-API-KEY
func apiKeyFromRequest(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && len(auth) > 7 {
		return auth[7:]
	}
	return r.Header.Get("X-API-KEY")
}

// AuthMiddleware проверяет API ключ и кладет пользователя в контекст запроса.
// Публичные маршруты этим middleware не оборачиваются.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := apiKeyFromRequest(r)
		if apiKey == "" {
			h.writeError(w, http.StatusUnauthorized, "API key required (Authorization: Bearer <key> or X-API-KEY)")
			return
		}

		user, err := h.Store.GetUserByAPIKey(r.Context(), apiKey)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				h.writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			h.writeStorageError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser достает пользователя из контекста; отсутствие означает,
// что маршрут ошибочно не обернут в AuthMiddleware
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*db.User, bool) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return u, true
}
