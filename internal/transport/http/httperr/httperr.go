// httperr стандартизирует ответы об ошибках HTTP-слоя asset-vault.
// На вход принимает ошибку сервисного слоя (сентинелы из internal/service),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Замечания по маппингу:
//   - неверные учётные данные и несуществующий пользователь на login
//     неразличимы снаружи: оба дают 400/invalid_credentials;
//   - занятый email на register — 400 (контракт register отдаёт конфликт
//     как ошибку валидации);
//   - bearer: истёкший access-токен — 401, битая подпись — 403;
//     refresh: невалидный/истёкший/отозванный refresh-токен — 403;
//   - недоступность revocation-хранилища наружу не транслируется
//     (fail-soft в сервисном слое), 503 остаётся для деградаций БД.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-asset-vault/internal/cache"
	"github.com/pribylovaa/go-asset-vault/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrUnauthenticated — транспортная ошибка «токен не предъявлен».
// Сервисного сентинела для этого случая нет: отсутствие заголовка
// Authorization или cookie видно только на HTTP-слое.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и
// унифицированный ответ для фронта.
// err == nil — программная ошибка вызова: возвращаем 500/internal,
// чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := base(err)

	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// base — таблица маппинга сервисных сентинелов на HTTP.
func base(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusBadRequest, "invalid_credentials", "invalid credentials"

	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrEmptyPassword),
		errors.Is(err, service.ErrInvalidAsset):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"

	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest, "already_exists", "email already taken"

	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"

	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired", "token expired"

	case errors.Is(err, service.ErrTokenRevoked):
		return http.StatusForbidden, "token_revoked", "token revoked"

	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusForbidden, "invalid_token", "invalid token"

	case errors.Is(err, service.ErrAssetNotFound):
		return http.StatusNotFound, "not_found", "not found"

	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large", "file too large"

	case errors.Is(err, cache.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"

	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"

	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
