package handlers

import (
	"net/http"
	"time"

	"github.com/pribylovaa/go-asset-vault/internal/models"
	"github.com/pribylovaa/go-asset-vault/internal/service"
	"github.com/pribylovaa/go-asset-vault/internal/transport/http/httperr"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	AccessToken     string       `json:"access_token"`
	AccessExpiresAt time.Time    `json:"access_expires_at"`
	User            userResponse `json:"user"`
}

func toAuthResponse(pair *models.TokenPair, user *models.User) authResponse {
	return authResponse{
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt,
		User: userResponse{
			ID:        user.ID.String(),
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		},
	}
}

// RegisterUser — POST /auth/register.
// 201 + пара токенов (refresh уходит в HttpOnly cookie).
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, service.ErrInvalidEmail)
		return
	}

	pair, user, err := h.svc.RegisterUser(r.Context(), in.Email, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusCreated, toAuthResponse(pair, user))
}

// LoginUser — POST /auth/login.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, service.ErrInvalidCredentials)
		return
	}

	pair, user, err := h.svc.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, toAuthResponse(pair, user))
}

// RefreshTokens — POST /auth/refresh.
// Refresh-токен берётся из cookie, резервно — из тела запроса.
func (h *Handlers) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	// Тело опционально: cookie достаточно.
	_ = decodeStrict(r, &in)

	token := refreshTokenFrom(r, in.RefreshToken)
	if token == "" {
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	pair, user, err := h.svc.RefreshTokens(r.Context(), token)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, toAuthResponse(pair, user))
}

// Logout — POST /auth/logout.
// Отзывает текущий refresh-токен и стирает cookie.
// Отсутствующая или нечитаемая cookie — 401.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	_ = decodeStrict(r, &in)

	token := refreshTokenFrom(r, in.RefreshToken)
	if token == "" {
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	if err := h.svc.Logout(r.Context(), token); err != nil {
		// Единственная ошибка logout — нечитаемый токен; наружу это 401,
		// как и отсутствующая cookie.
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusOK)
}
