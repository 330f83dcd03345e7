package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-asset-vault/internal/models"
	"github.com/pribylovaa/go-asset-vault/internal/service"
	"github.com/pribylovaa/go-asset-vault/internal/transport/http/httperr"
	"github.com/pribylovaa/go-asset-vault/internal/transport/http/middleware"
)

// multipartMemoryLimit — сколько байт формы держим в памяти,
// остальное net/http скидывает во временные файлы.
const multipartMemoryLimit = 10 << 20

type assetResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	FilePath     string    `json:"file_path"`
	FileType     string    `json:"file_type"`
	Size         int64     `json:"size"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	OwnerID      string    `json:"owner_id"`
	Tags         []string  `json:"tags,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toAssetResponse(a *models.Asset) assetResponse {
	return assetResponse{
		ID:           a.ID.Hex(),
		Title:        a.Title,
		Description:  a.Description,
		FilePath:     a.FilePath,
		FileType:     a.FileType,
		Size:         a.Size,
		ThumbnailURL: a.ThumbnailURL,
		OwnerID:      a.OwnerID.String(),
		Tags:         a.Tags,
		Status:       a.Status,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

type assetListResponse struct {
	Items []assetResponse `json:"items"`
}

// CreateAsset — POST /assets (multipart/form-data).
// Поля: file (обязательное), title (обязательное), description, tags
// (через запятую). 201 + документ созданного ассета.
func (h *Handlers) CreateAsset(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	// Жёсткий предел на размер всего тела: лимит файла плюс запас на поля формы.
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Upload.MaxSizeBytes+multipartMemoryLimit)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		httperr.WriteError(w, r, service.ErrFileTooLarge)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		httperr.WriteError(w, r, service.ErrInvalidAsset)
		return
	}
	defer file.Close()

	in := service.CreateAssetInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        splitTags(r.FormValue("tags")),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}

	asset, err := h.svc.CreateAsset(r.Context(), p.UserID, in)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssetResponse(asset))
}

// ListAssets — GET /assets. Активные ассеты владельца, новые первыми.
func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	items, err := h.svc.AssetsByOwner(r.Context(), p.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := assetListResponse{Items: make([]assetResponse, 0, len(items))}
	for i := range items {
		out.Items = append(out.Items, toAssetResponse(&items[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// GetAsset — GET /assets/{id}.
func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	asset, err := h.svc.AssetByID(r.Context(), chi.URLParam(r, "id"), p.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAssetResponse(asset))
}

// DeleteAsset — DELETE /assets/{id}. Мягкое удаление, 204 при успехе.
func (h *Handlers) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	if err := h.svc.DeleteAsset(r.Context(), chi.URLParam(r, "id"), p.UserID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// splitTags разбирает список тегов из формы ("a, b,c" -> ["a","b","c"]).
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
