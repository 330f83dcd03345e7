package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Статусы ассета. Удаление — мягкое: документ остаётся, статус меняется.
const (
	AssetStatusActive  = "active"
	AssetStatusDeleted = "deleted"
)

// Asset — цифровой ассет (MongoDB, коллекция assets).
// Важно:
//   - ID — ObjectID MongoDB; наружу отдаётся hex-строкой;
//   - FilePath — ключ объекта в файловом хранилище (S3/MinIO);
//   - FileType — MIME-тип, каким его прислал клиент;
//   - ThumbnailURL хранится как есть, генерация превью вне зоны сервиса;
//   - OwnerID — UUID владельца из коллекции users.
type Asset struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	FilePath     string             `bson:"file_path"`
	FileType     string             `bson:"file_type"`
	Size         int64              `bson:"size"`
	ThumbnailURL string             `bson:"thumbnail_url,omitempty"`
	OwnerID      uuid.UUID          `bson:"owner_id"`
	Tags         []string           `bson:"tags,omitempty"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}
