// storage задаёт контракты хранилищ asset-vault и их сигнальные ошибки.
// Реализации живут в подпакетах (mongo — документы, minio — файлы).
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-asset-vault/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/ассет/объект).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument — нарушены ограничения запроса (тип/размер/формат id).
	ErrInvalidArgument = errors.New("invalid argument")
)

// UserStorage выполняет операции над учётными записями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя. Дубликат email -> ErrAlreadyExists.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AssetStorage выполняет операции над документами ассетов.
type AssetStorage interface {
	// SaveAsset вставляет документ ассета и возвращает его с проставленным ID.
	SaveAsset(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	// AssetByID возвращает активный ассет владельца.
	AssetByID(ctx context.Context, id string, ownerID uuid.UUID) (*models.Asset, error)
	// AssetsByOwner возвращает все активные ассеты владельца.
	AssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Asset, error)
	// DeleteAsset помечает активный ассет владельца удалённым (мягкое удаление).
	// Отсутствие активной записи -> ErrNotFound.
	DeleteAsset(ctx context.Context, id string, ownerID uuid.UUID) (*models.Asset, error)
}

// TxRunner выполняет unit of work в транзакции БД:
// commit при nil, abort при ошибке (исходная ошибка пробрасывается),
// сессия освобождается на любом пути выхода. Вложенные вызовы не поддерживаются.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	AssetStorage
	TxRunner
	Close(ctx context.Context) error
}

// StoredFile — дескриптор размещённого файла, который потребляет
// поток создания ассета.
type StoredFile struct {
	// Key — ключ объекта в бакете (используется как file_path ассета).
	Key string
	// ContentType — MIME-тип, зафиксированный при загрузке.
	ContentType string
	// Size — размер объекта в байтах.
	Size int64
	// PublicURL — публичный URL (если сконфигурирован PublicBaseURL), иначе "".
	PublicURL string
	// UploadedAt — момент размещения (UTC).
	UploadedAt time.Time
}

// FileStorage — контракт размещения загруженных файлов.
type FileStorage interface {
	// SaveObject кладёт содержимое r в бакет под ключ
	// "assets/<ownerID>/<uuid><ext>" и возвращает дескриптор файла.
	SaveObject(ctx context.Context, ownerID uuid.UUID, filename, contentType string, r io.Reader, size int64) (*StoredFile, error)
	// RemoveObject удаляет объект по ключу (best-effort очистка).
	RemoveObject(ctx context.Context, key string) error
}
