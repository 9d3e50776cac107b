package inventory

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"inventory-server/core/reconcile"
	"inventory-server/core/storage"
	"inventory-server/feature/inventory/archive"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the inventory feature. The storage client may be
// nil, which disables submission archiving.
func NewFeature(db *gorm.DB, logger *zap.Logger, conf reconcile.Conf, rules reconcile.RuleEngine, client storage.Client, bucket string) (*Feature, error) {
	svc, err := NewService(db, logger, conf, rules, archive.New(client, bucket, logger))
	if err != nil {
		return nil, err
	}
	return &Feature{service: svc, handler: NewHandler(svc)}, nil
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "inventory"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
