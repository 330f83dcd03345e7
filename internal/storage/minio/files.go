package minio

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/pribylovaa/go-asset-vault/internal/storage"
)

// SaveObject кладёт содержимое r в бакет под ключ
// "assets/<ownerID>/<uuid><ext>". Расширение выводится из contentType,
// при неизвестном типе — из имени исходного файла.
// Размер проверяется против cfg.Upload.MaxSizeBytes.
func (s *FileStorage) SaveObject(ctx context.Context, ownerID uuid.UUID, filename, contentType string, r io.Reader, size int64) (*storage.StoredFile, error) {
	const op = "storage/minio/SaveObject"

	if size <= 0 || size > s.cfg.Upload.MaxSizeBytes {
		return nil, storage.ErrInvalidArgument
	}

	ext := extensionFor(contentType, filename)
	key := path.Join("assets", ownerID.String(), uuid.NewString()+ext)

	info, err := s.client.PutObject(ctx, s.cfg.S3.Bucket, key, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := &storage.StoredFile{
		Key:         key,
		ContentType: contentType,
		Size:        info.Size,
		UploadedAt:  time.Now().UTC(),
	}

	if base := strings.TrimRight(s.cfg.S3.PublicBaseURL, "/"); base != "" {
		out.PublicURL = base + "/" + key
	}

	return out, nil
}

// RemoveObject удаляет объект по ключу. Отсутствие объекта ошибкой не считается.
func (s *FileStorage) RemoveObject(ctx context.Context, key string) error {
	const op = "storage/minio/RemoveObject"

	if strings.TrimSpace(key) == "" {
		return storage.ErrInvalidArgument
	}

	if err := s.client.RemoveObject(ctx, s.cfg.S3.Bucket, key, mclient.RemoveObjectOptions{}); err != nil {
		errResp := mclient.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// extensionFor выбирает расширение объекта: сначала по известным MIME-типам,
// затем по таблице mime, в крайнем случае — из имени исходного файла.
func extensionFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	}

	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}

	if ext := path.Ext(filename); ext != "" {
		return ext
	}

	return ""
}
