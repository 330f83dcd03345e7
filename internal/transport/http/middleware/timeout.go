package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout ограничивает обработку запроса общим дедлайном сервиса
// (cfg.Timeouts.Service); он доходит до mongo/redis/minio через контекст.
// Уже установленный снаружи deadline не перекрывается. d <= 0 отключает
// ограничение — мидлвар становится no-op, как и RateLimitByIP.
func Timeout(d time.Duration) Middleware {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := ctx.Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
