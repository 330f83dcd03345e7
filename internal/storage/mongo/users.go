package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-asset-vault/internal/models"
	"github.com/pribylovaa/go-asset-vault/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// SaveUser создаёт учётную запись. Дубликат email -> storage.ErrAlreadyExists.
// Email нормализуется до нижнего регистра перед записью — уникальный индекс
// работает по нормализованному значению.
func (m *Mongo) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage/mongo/SaveUser"

	if user == nil {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	// MongoDB DateTime хранит миллисекунды.
	toMS := func(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }
	now := toMS(time.Now())

	doc := *user
	doc.Email = strings.ToLower(strings.TrimSpace(doc.Email))
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	} else {
		doc.CreatedAt = toMS(doc.CreatedAt)
	}
	doc.UpdatedAt = now

	if _, err := m.users.InsertOne(ctx, doc); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: insert: %w", op, err)
	}

	user.Email = doc.Email
	user.CreatedAt = doc.CreatedAt
	user.UpdatedAt = doc.UpdatedAt

	return nil
}

// UserByEmail возвращает пользователя по email (поиск по нормализованному значению).
// Если запись не найдена — storage.ErrNotFound.
func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage/mongo/UserByEmail"

	norm := strings.ToLower(strings.TrimSpace(email))

	var out models.User
	if err := m.users.FindOne(ctx, bson.D{{Key: "email", Value: norm}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()

	return &out, nil
}

// UserByID возвращает пользователя по идентификатору.
// Если запись не найдена — storage.ErrNotFound.
func (m *Mongo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	var out models.User
	if err := m.users.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()

	return &out, nil
}
