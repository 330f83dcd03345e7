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
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveAsset вставляет документ ассета и возвращает его с проставленным ID.
// Статус и временные поля нормализуются перед записью.
func (m *Mongo) SaveAsset(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	const op = "storage/mongo/SaveAsset"

	if asset == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	toMS := func(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }
	now := toMS(time.Now())

	doc := *asset
	if doc.Status == "" {
		doc.Status = models.AssetStatusActive
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	// Если ID пустой — драйвер сгенерирует новый ObjectID.
	res, err := m.assets.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	return &doc, nil
}

// AssetByID возвращает активный ассет владельца.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) AssetByID(ctx context.Context, id string, ownerID uuid.UUID) (*models.Asset, error) {
	const op = "storage/mongo/AssetByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "owner_id", Value: ownerID},
		{Key: "status", Value: models.AssetStatusActive},
	}

	var out models.Asset
	if err := m.assets.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()

	return &out, nil
}

// AssetsByOwner возвращает все активные ассеты владельца,
// отсортированные по created_at DESC.
func (m *Mongo) AssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Asset, error) {
	const op = "storage/mongo/AssetsByOwner"

	filter := bson.D{
		{Key: "owner_id", Value: ownerID},
		{Key: "status", Value: models.AssetStatusActive},
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := m.assets.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Asset
	for cur.Next(ctx) {
		var a models.Asset
		if err := cur.Decode(&a); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		a.CreatedAt = a.CreatedAt.UTC()
		a.UpdatedAt = a.UpdatedAt.UTC()
		items = append(items, a)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}

// DeleteAsset помечает активный ассет владельца удалённым (мягкое удаление)
// и возвращает документ уже с новым статусом.
// При отсутствии активной записи — storage.ErrNotFound.
func (m *Mongo) DeleteAsset(ctx context.Context, id string, ownerID uuid.UUID) (*models.Asset, error) {
	const op = "storage/mongo/DeleteAsset"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "owner_id", Value: ownerID},
		{Key: "status", Value: models.AssetStatusActive},
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: models.AssetStatusDeleted},
			{Key: "updated_at", Value: time.Now().UTC().Truncate(time.Millisecond)},
		}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Asset
	if err := m.assets.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()

	return &out, nil
}
