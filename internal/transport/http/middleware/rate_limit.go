package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/pribylovaa/go-asset-vault/internal/transport/http/httperr"
)

// RateLimitByIP ограничивает число запросов с одного IP за окно.
// При превышении лимита отдаёт унифицированный 429.
// Счётчик создаётся один раз: все маршруты, обёрнутые одним значением
// мидлвара, делят общее окно. requests <= 0 делает мидлвар no-op.
func RateLimitByIP(requests int, window time.Duration) Middleware {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimited),
	)

	return Middleware(limiter)
}

// rateLimited пишет 429 в формате httperr (собственный код, не из таблицы
// сентинелов: у лимитов нет сервисной ошибки).
func rateLimited(w http.ResponseWriter, r *http.Request) {
	resp := httperr.ErrorResponse{
		Error: httperr.APIError{
			Code:    "rate_limited",
			Message: "too many requests",
		},
	}

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(resp)
}
