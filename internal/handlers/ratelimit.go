package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ostkru/trading/internal/ratelimit"
)

// clientIP берет адрес за прокси из X-Forwarded-For, иначе RemoteAddr.
// В заголовке может быть цепочка "client, proxy1, proxy2", клиент первым.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	return r.RemoteAddr
}

// RateLimitMiddleware регистрирует запрос в лимитере до обработки.
// Ключом служит API ключ, для анонимных запросов IP клиента, чтобы публичные
// маршруты тоже были ограничены.
func (h *Handler) RateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := apiKeyFromRequest(r)
			if key == "" {
				key = "anonymous_" + clientIP(r)
			}

			decision, err := limiter.Allow(r.Context(), key, r.Method == http.MethodGet)
			if err != nil {
				h.Log.Error("rate limit check failed", zap.Error(err))
				h.writeError(w, http.StatusInternalServerError, "rate limit check failed")
				return
			}

			setRateLimitHeaders(w, decision)
			if !decision.Allowed {
				h.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, d *ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit-Minute", strconv.Itoa(d.MinuteLimit))
	w.Header().Set("X-RateLimit-Limit-Day", strconv.Itoa(d.DayLimit))
	w.Header().Set("X-RateLimit-Remaining-Minute", strconv.Itoa(d.MinuteRemaining()))
	w.Header().Set("X-RateLimit-Remaining-Day", strconv.Itoa(d.DayRemaining()))
	w.Header().Set("X-RateLimit-Reset-Minute", "60")
	w.Header().Set("X-RateLimit-Reset-Day", "86400")
}
