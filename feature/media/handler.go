package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"vehicle-catalog/core/logger"
	"vehicle-catalog/core/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// maxUploadSize bounds a single image upload.
const maxUploadSize = 20 << 20

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// Handler handles media upload requests.
type Handler struct {
	client storage.Client
	cfg    storage.Config
	logger *zap.Logger
}

// NewHandler creates a new media handler.
func NewHandler(client storage.Client, cfg storage.Config, logger *zap.Logger) *Handler {
	return &Handler{client: client, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the media routes.
func (h *Handler) RegisterRoutes(admin fiber.Router) {
	group := admin.Group("/media")
	group.Post("/", h.HandleUpload)
	group.Delete("/:object", h.HandleDelete)
}

// HandleUpload stores one image and returns its public URL.
// @Summary Upload Media
// @Description Upload a catalog image; returns the public URL to reference from catalog records.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file (jpg, png, webp or svg)"
// @Success 201 {object} map[string]string "Uploaded object"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 502 {object} map[string]string "Storage unavailable"
// @Security ApiKeyAuth
// @Router /admin/media [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing file field",
		})
	}
	if fileHeader.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file too large",
		})
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("unsupported file type %q", ext),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		l.Error("Failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unreadable upload",
		})
	}
	defer file.Close()

	// Random object names keep uploads collision-free and immutable;
	// replacing an image means uploading a new object.
	objectName := uuid.NewString() + ext
	_, err = h.client.PutObject(c.Context(), h.cfg.Bucket, objectName, file, fileHeader.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		l.Error("Media upload failed", zap.String("object", objectName), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "storage unavailable",
		})
	}

	l.Info("Media uploaded",
		zap.String("object", objectName),
		zap.String("filename", fileHeader.Filename),
		zap.Int64("size", fileHeader.Size))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"object": objectName,
		"url":    storage.PublicURL(h.cfg, objectName),
	})
}

// HandleDelete removes an uploaded object.
// @Summary Delete Media
// @Description Delete an uploaded catalog image by object name.
// @Tags admin
// @Produce json
// @Param object path string true "Object name"
// @Success 200 {object} map[string]string "Deletion result"
// @Failure 502 {object} map[string]string "Storage unavailable"
// @Security ApiKeyAuth
// @Router /admin/media/{object} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	objectName := c.Params("object")

	if err := h.client.RemoveObject(c.Context(), h.cfg.Bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		l.Error("Media deletion failed", zap.String("object", objectName), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "storage unavailable",
		})
	}

	l.Info("Media deleted", zap.String("object", objectName))
	return c.JSON(fiber.Map{"status": "deleted"})
}
