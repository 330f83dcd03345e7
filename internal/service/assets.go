package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-asset-vault/internal/models"
	"github.com/pribylovaa/go-asset-vault/internal/pkg/log"
	"github.com/pribylovaa/go-asset-vault/internal/storage"
)

// CreateAssetInput — параметры создания ассета из multipart-загрузки.
type CreateAssetInput struct {
	Title       string
	Description string
	Tags        []string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// CreateAsset размещает файл в файловом хранилище и создаёт документ ассета
// в транзакции БД. Если документ записать не удалось — загруженный объект
// подчищается best-effort.
func (s *Service) CreateAsset(ctx context.Context, ownerID uuid.UUID, in CreateAssetInput) (*models.Asset, error) {
	const op = "service.assets.CreateAsset"

	lg := log.From(ctx)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAsset)
	}

	if in.Content == nil || in.Size <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAsset)
	}

	if in.Size > s.cfg.Upload.MaxSizeBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrFileTooLarge)
	}

	stored, err := s.files.SaveObject(ctx, ownerID, in.Filename, in.ContentType, in.Content, in.Size)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidAsset)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	asset := &models.Asset{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		FilePath:    stored.Key,
		FileType:    stored.ContentType,
		Size:        stored.Size,
		OwnerID:     ownerID,
		Tags:        normalizeTags(in.Tags),
		Status:      models.AssetStatusActive,
	}

	var out *models.Asset
	err = s.storage.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		out, txErr = s.storage.SaveAsset(ctx, asset)
		return txErr
	})
	if err != nil {
		if rmErr := s.files.RemoveObject(ctx, stored.Key); rmErr != nil {
			lg.Warn("asset_object_cleanup_failed",
				slog.String("op", op),
				slog.String("key", stored.Key),
				slog.String("err", rmErr.Error()),
			)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// AssetByID возвращает активный ассет владельца.
func (s *Service) AssetByID(ctx context.Context, id string, ownerID uuid.UUID) (*models.Asset, error) {
	const op = "service.assets.AssetByID"

	out, err := s.storage.AssetByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrAssetNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// AssetsByOwner возвращает все активные ассеты владельца (новые первыми).
func (s *Service) AssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Asset, error) {
	const op = "service.assets.AssetsByOwner"

	items, err := s.storage.AssetsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// DeleteAsset помечает ассет владельца удалённым. Файл в хранилище остаётся:
// мягкое удаление обратимо на уровне данных, объект чистится отдельным процессом.
func (s *Service) DeleteAsset(ctx context.Context, id string, ownerID uuid.UUID) error {
	const op = "service.assets.DeleteAsset"

	if _, err := s.storage.DeleteAsset(ctx, id, ownerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrAssetNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// normalizeTags отбрасывает пустые и дублирующиеся теги, сохраняя порядок.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}

		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}
		out = append(out, t)
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
