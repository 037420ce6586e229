package media

import (
	"context"

	"vehicle-catalog/core/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
	client  storage.Client
	cfg     storage.Config
	logger  *zap.Logger
	admin   fiber.Router
}

// NewFeature creates the media feature. Routes mount on the admin router
// only; public reads go straight to the object store.
func NewFeature(client storage.Client, cfg storage.Config, logger *zap.Logger, admin fiber.Router) *Feature {
	return &Feature{
		handler: NewHandler(client, cfg, logger),
		client:  client,
		cfg:     cfg,
		logger:  logger,
		admin:   admin,
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "media"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.client != nil
}

// Load ensures the bucket exists and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.ensureBucket(context.Background()); err != nil {
		return err
	}
	f.handler.RegisterRoutes(f.admin)
	return nil
}

func (f *Feature) ensureBucket(ctx context.Context) error {
	exists, err := f.client.BucketExists(ctx, f.cfg.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	f.logger.Info("Creating media bucket", zap.String("bucket", f.cfg.Bucket))
	return f.client.MakeBucket(ctx, f.cfg.Bucket, minio.MakeBucketOptions{Region: f.cfg.Region})
}
