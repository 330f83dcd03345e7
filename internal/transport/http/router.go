// Package http собирает REST-роутер asset-vault: публичные auth-эндпойнты
// с пер-IP лимитами и приватные операции над ассетами за проверкой
// access-токена.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-asset-vault/internal/config"
	"github.com/pribylovaa/go-asset-vault/internal/service"
	"github.com/pribylovaa/go-asset-vault/internal/transport/http/handlers"
	"github.com/pribylovaa/go-asset-vault/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, cfg *config.Config, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if cfg.Timeouts.Service > 0 {
		root.Use(middleware.Timeout(cfg.Timeouts.Service)) // общий дедлайн запроса
	}

	h := handlers.New(svc, cfg)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, svc, cfg)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc, cfg)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
// Лимиты: login и refresh имеют собственные жёсткие окна, остальное API
// накрыто общим лимитом.
func registerRoutes(r chi.Router, h *handlers.Handlers, svc *service.Service, cfg *config.Config) {
	api := middleware.RateLimitByIP(cfg.Limits.APIPerWindow, cfg.Limits.APIWindow)

	// auth (публичные)
	r.Group(func(g chi.Router) {
		g.Use(api)
		g.Post("/auth/register", h.RegisterUser)
		g.With(middleware.RateLimitByIP(cfg.Limits.LoginPerWindow, cfg.Limits.LoginWindow)).
			Post("/auth/login", h.LoginUser)
		g.With(middleware.RateLimitByIP(cfg.Limits.RefreshPerWindow, cfg.Limits.RefreshWindow)).
			Post("/auth/refresh", h.RefreshTokens)
		g.Post("/auth/logout", h.Logout)
	})

	// assets (за access-токеном)
	r.Group(func(g chi.Router) {
		g.Use(api, middleware.AuthBearer(svc))
		g.Post("/assets", h.CreateAsset)
		g.Get("/assets", h.ListAssets)
		g.Get("/assets/{id}", h.GetAsset)
		g.Delete("/assets/{id}", h.DeleteAsset)
	})
}
