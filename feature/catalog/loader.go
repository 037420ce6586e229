package catalog

import (
	"context"

	"vehicle-catalog/core/livesync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	admin   fiber.Router
}

// NewFeature creates the catalog feature. admin is the router the
// back-office routes mount on; feed may be nil to disable live updates.
func NewFeature(db *gorm.DB, feed livesync.Feed, logger *zap.Logger, cfg Config, admin fiber.Router) *Feature {
	svc := NewService(db, feed, logger, cfg)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h, admin: admin}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "catalog"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	f.handler.RegisterAdminRoutes(f.admin)
	return nil
}

// Start loads the snapshots and subscribes the watchers.
func (f *Feature) Start(ctx context.Context) error {
	return f.service.Start(ctx)
}

// Close tears down the watchers.
func (f *Feature) Close() error {
	return f.service.Close()
}
