package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-asset-vault/internal/transport/http/httperr"
)

// TokenValidator — минимальный контракт проверки access-токена
// (реализуется сервисным слоем).
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (uuid.UUID, string, string, error)
}

// Principal — аутентифицированный субъект запроса.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type principalKey struct{}

// PrincipalFrom возвращает субъекта запроса, если он прошёл AuthBearer.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// AuthBearer проверяет access-токен из Authorization: Bearer <token>.
// Отсутствующий или истёкший токен — 401, битая подпись — 403
// (маппинг выполняет httperr по сентинелам сервиса).
func AuthBearer(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httperr.WriteError(w, r, httperr.ErrUnauthenticated)
				return
			}

			uid, email, role, err := v.ValidateAccessToken(r.Context(), token)
			if err != nil {
				httperr.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, Principal{
				UserID: uid,
				Email:  email,
				Role:   role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) || len(auth) <= len(prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}
