// service содержит бизнес-логику asset-vault:
// регистрацию/аутентификацию пользователей, выпуск/ротацию токенов
// и операции над ассетами через интерфейсы из пакетов storage и cache.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданные зависимости потокобезопасны.
//   - Ошибки возвращаются и далее маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
//   - Revocation-хранилище — вспомогательный контур: его недоступность
//     деградирует проверку повторного использования refresh-токенов,
//     но не валит аутентификацию (подпись и срок проверяются всегда).
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/go-asset-vault/internal/cache"
	"github.com/pribylovaa/go-asset-vault/internal/config"
	"github.com/pribylovaa/go-asset-vault/internal/storage"
)

var (
	// ErrInvalidCredentials — пароль не подходит к найденной учётной записи.
	// Транспорт: HTTP 400 (контракт login не раскрывает, что именно неверно).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound — учётная запись не найдена.
	// Транспорт: HTTP 400 на login (неотличимо от неверного пароля снаружи).
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи.
	// Транспорт: HTTP 403 для подписи, HTTP 401 для отсутствующего токена.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — refresh-токен отозван (logout) либо уже был
	// использован (ротация прошла). Транспорт: HTTP 403.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrEmailTaken — e-mail уже занят другим пользователем. Транспорт: HTTP 400.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — e-mail имеет некорректный формат. Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности. Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrAssetNotFound — ассет не найден или принадлежит другому владельцу.
	// Транспорт: HTTP 404.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidAsset — метаданные или файл ассета не проходят валидацию.
	// Транспорт: HTTP 400.
	ErrInvalidAsset = errors.New("invalid asset")

	// ErrFileTooLarge — файл превышает сконфигурированный предел. Транспорт: HTTP 413.
	ErrFileTooLarge = errors.New("file too large")
)

// Service описывает бизнес-логику asset-vault.
type Service struct {
	storage storage.Storage
	files   storage.FileStorage
	rstore  cache.RevocationStore // может быть nil, если хранилище не сконфигурировано
	cfg     *config.Config

	// now подменяется в тестах для проверки срока жизни токенов.
	now func() time.Time
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, files storage.FileStorage, cfg *config.Config) *Service {
	return &Service{
		storage: st,
		files:   files,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetRevocationStore устанавливает revocation-хранилище refresh-токенов (опционально).
func (s *Service) SetRevocationStore(r cache.RevocationStore) {
	s.rstore = r
}
