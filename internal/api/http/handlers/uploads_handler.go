package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/plotmarket/plot-service/internal/api/dto"
	"github.com/plotmarket/plot-service/internal/service"
	apperrors "github.com/plotmarket/plot-service/pkg/util/errorutil"
)

// UploadsHandler accepts multipart image uploads for listings.
type UploadsHandler struct {
	uploads *service.UploadService
}

// NewUploadsHandler constructs the handler.
func NewUploadsHandler(uploadService *service.UploadService) *UploadsHandler {
	return &UploadsHandler{uploads: uploadService}
}

// UploadListingImages handles POST /uploads/listings with a "files" field.
func (h *UploadsHandler) UploadListingImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form required", nil)
	}

	headers := form.File["files"]
	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable file", map[string]any{"file": header.Filename})
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return apperrors.NewValidationError("unreadable file", map[string]any{"file": header.Filename})
		}
		files = append(files, service.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	urls, err := h.uploads.UploadListingImages(c.Context(), files)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{URLs: urls}})
}
