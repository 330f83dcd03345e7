// handlers реализует REST-эндпойнты asset-vault поверх сервисного слоя.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pribylovaa/go-asset-vault/internal/config"
	"github.com/pribylovaa/go-asset-vault/internal/service"
)

// refreshCookieName — имя HttpOnly-cookie с refresh-токеном.
const refreshCookieName = "refresh_token"

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc *service.Service
	cfg *config.Config
}

func New(svc *service.Service, cfg *config.Config) *Handlers {
	return &Handlers{svc: svc, cfg: cfg}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// setRefreshCookie выставляет HttpOnly-cookie с refresh-токеном.
// Secure включается вне локального окружения.
func (h *Handlers) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Auth.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.Env != "local",
		SameSite: http.SameSiteLaxMode,
	})
}

// clearRefreshCookie стирает cookie с refresh-токеном.
func (h *Handlers) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Env != "local",
		SameSite: http.SameSiteLaxMode,
	})
}

// refreshTokenFrom достаёт refresh-токен: сначала cookie, затем тело запроса.
func refreshTokenFrom(r *http.Request, bodyToken string) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	return bodyToken
}
