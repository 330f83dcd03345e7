package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-asset-vault/internal/models"
	"github.com/pribylovaa/go-asset-vault/internal/pkg/log"
)

// authClaims — полезная нагрузка обоих токенов пары.
// Access и refresh несут одинаковый набор полей, но подписываются
// разными ключами: access-токен нельзя предъявить как refresh и наоборот.
// Каждый выпуск получает свежий jti: HS256 детерминирован, и без него два
// токена с одинаковыми claims в пределах секунды совпали бы байт в байт —
// ротация refresh-токена обязана давать новое значение.
type authClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// generateToken выпускает подписанный HS256-токен с заданным TTL и ключом.
func (s *Service) generateToken(ctx context.Context, user *models.User, ttl time.Duration, secret string) (string, error) {
	const op = "service.token.generateToken"

	lg := log.From(ctx)
	now := s.now()

	claims := authClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Auth.Issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings(s.cfg.Auth.Audience),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		lg.Error("token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// parseToken валидирует токен против заданного ключа и возвращает claims.
// Подпись, срок (с небольшим люфтом), issuer и audience проверяются всегда.
func (s *Service) parseToken(tokenStr, secret string) (*authClaims, error) {
	const op = "service.token.parseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &authClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Auth.Issuer),
		jwt.WithAudience(s.cfg.Auth.Audience...),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*authClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// decodeTokenUnverified извлекает claims БЕЗ проверки подписи.
// Пригоден только там, где claims не являются основанием для доверия
// (logout: знание refresh-токена и так подтверждает владение сессией).
func (s *Service) decodeTokenUnverified(tokenStr string) (*authClaims, error) {
	const op = "service.token.decodeTokenUnverified"

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &authClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// ValidateAccessToken проверяет access-токен и возвращает данные пользователя.
func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (uuid.UUID, string, string, error) {
	const op = "service.token.ValidateAccessToken"

	claims, err := s.parseToken(accessToken, s.cfg.Auth.AccessSecret)
	if err != nil {
		return uuid.Nil, "", "", fmt.Errorf("%s: %w", op, err)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, "", "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, claims.Email, claims.Role, nil
}

// issueTokenPair выпускает новую пару access+refresh токенов и фиксирует
// refresh-токен в revocation-хранилище как текущий. Запись best-effort:
// недоступное хранилище логируется, но выпуск пары не срывает.
func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.token.issueTokenPair"

	lg := log.From(ctx)
	now := s.now()

	accessToken, err := s.generateToken(ctx, user, s.cfg.Auth.AccessTokenTTL, s.cfg.Auth.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.generateToken(ctx, user, s.cfg.Auth.RefreshTokenTTL, s.cfg.Auth.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.rstore != nil {
		if err := s.rstore.Put(ctx, user.Email, refreshToken, s.cfg.Auth.RefreshTokenTTL); err != nil {
			lg.Warn("revocation_put_degraded",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.Auth.AccessTokenTTL),
	}, nil
}
