package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-asset-vault/internal/cache"
	"github.com/pribylovaa/go-asset-vault/internal/models"
	"github.com/pribylovaa/go-asset-vault/internal/pkg/log"
	"github.com/pribylovaa/go-asset-vault/internal/pkg/redact"
	"github.com/pribylovaa/go-asset-vault/internal/storage"
)

// RegisterUser регистрирует нового пользователя и сразу выпускает пару токенов.
// Создание учётной записи выполняется в транзакции БД; запись refresh-токена
// в revocation-хранилище происходит после коммита и не участвует в транзакции.
func (s *Service) RegisterUser(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.RegisterUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(password); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.storage.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.storage.UserByEmail(ctx, normEmail); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		return s.storage.SaveUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) || errors.Is(err, ErrEmailTaken) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// LoginUser выполняет вход по email+пароль.
// Неизвестный email и неверный пароль различимы по сентинелам внутри сервиса,
// но транспорт отдаёт их одинаково.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.LoginUser"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		lg.Warn("login_bad_password",
			slog.String("op", op),
			slog.String("email", redact.Email(normEmail)),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// RefreshTokens ротирует пару токенов по refresh-токену.
//
// Порядок проверок:
//  1. подпись и срок refresh-токена (refresh-ключ) — всегда;
//  2. сверка с текущим токеном в revocation-хранилище:
//     совпадение — ротация; ключа нет или токен другой — отказ
//     (logout либо повторное использование, fail-closed);
//     хранилище недоступно — токен принимается по подписи (fail-soft).
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.RefreshTokens"

	lg := log.From(ctx)

	claims, err := s.parseToken(refreshToken, s.cfg.Auth.RefreshSecret)
	if err != nil {
		// Контракт refresh: истёкший токен неотличим от невалидного (403),
		// в отличие от bearer-проверки, где истечение — это 401.
		if errors.Is(err, ErrTokenExpired) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.rstore != nil {
		res, verr := s.rstore.Validate(ctx, claims.Email, refreshToken)
		switch res {
		case cache.ValidationMatch:
			// Токен текущий — ротация разрешена.
		case cache.ValidationMismatch:
			lg.Warn("refresh_reuse_detected",
				slog.String("op", op),
				slog.String("email", redact.Email(claims.Email)),
			)
			return nil, nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
		case cache.ValidationMissing:
			return nil, nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
		case cache.ValidationUnavailable:
			lg.Warn("revocation_check_degraded",
				slog.String("op", op),
				slog.String("err", verr.Error()),
			)
		}
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// Logout отзывает текущий refresh-токен пользователя.
// Identity извлекается БЕЗ проверки подписи: logout — не граница доверия,
// максимум вреда от подделки — досрочный выход чужой сессии из кэша.
// Нечитаемый токен -> ErrInvalidToken; недоступное revocation-хранилище
// логируется, выход считается выполненным.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	const op = "service.auth.Logout"

	lg := log.From(ctx)

	claims, err := s.decodeTokenUnverified(refreshToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.rstore != nil {
		removed, err := s.rstore.Invalidate(ctx, claims.Email)
		if err != nil {
			lg.Warn("logout_invalidate_degraded",
				slog.String("op", op),
				slog.String("email", redact.Email(claims.Email)),
				slog.String("err", err.Error()),
			)
		} else if !removed {
			// Ключа уже не было: повторный logout либо истёкший TTL.
			lg.Debug("logout_noop",
				slog.String("op", op),
				slog.String("email", redact.Email(claims.Email)),
			)
		}
	}

	return nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
