package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plotmarket/plot-service/internal/config"
	"github.com/plotmarket/plot-service/internal/storage"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// UploadFile is one in-memory file received from a multipart form.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadService validates listing images and pushes them to object storage.
type UploadService struct {
	store  storage.ObjectStore
	cfg    config.StorageConfig
	logger *zap.Logger
}

// NewUploadService builds the service.
func NewUploadService(store storage.ObjectStore, cfg config.StorageConfig, logger *zap.Logger) *UploadService {
	return &UploadService{store: store, cfg: cfg, logger: logger}
}

// UploadListingImages stores each file under listings/<uuid>-<name> and
// returns the object URLs in input order.
func (s *UploadService) UploadListingImages(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("no files uploaded", nil)
	}
	if s.cfg.MaxUploadFiles > 0 && len(files) > s.cfg.MaxUploadFiles {
		return nil, apperrors.NewValidationError("too many files", map[string]any{"max": s.cfg.MaxUploadFiles})
	}

	for _, f := range files {
		if _, ok := allowedImageTypes[f.ContentType]; !ok {
			return nil, apperrors.NewValidationError("only image files are allowed", map[string]any{"file": f.Name})
		}
		if s.cfg.MaxUploadBytes > 0 && int64(len(f.Data)) > s.cfg.MaxUploadBytes {
			return nil, apperrors.NewValidationError("file too large", map[string]any{
				"file": f.Name,
				"max":  s.cfg.MaxUploadBytes,
			})
		}
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		key := fmt.Sprintf("listings/%s-%s", uuid.NewString(), sanitizeFileName(f.Name))
		url, err := s.store.Put(ctx, key, f.Data, f.ContentType)
		if err != nil {
			s.logger.Error("upload failed", zap.String("key", key), zap.Error(err))
			return nil, apperrors.NewInternalError(err)
		}
		urls = append(urls, url)
	}

	s.logger.Info("uploaded listing images", zap.Int("count", len(urls)))
	return urls, nil
}

func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		return "file"
	}
	return name
}
