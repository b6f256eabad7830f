package strategies

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/core/storage"
	"github.com/AgbodesiImoagene/coingro-controller/feature/bots"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	store   *Store
	manager *Manager
	handler *Handler
}

// NewFeature creates a new strategies feature.
func NewFeature(db *gorm.DB, storageClient storage.Client, bucket string, cfg Config,
	botsFeature *bots.Feature, client *coingro.Client, logger *zap.Logger) *Feature {
	store := NewStore(db)
	catalog := NewCatalog(storageClient, bucket, cfg.Prefix, logger)
	manager := NewManager(store, catalog, botsFeature.Orchestrator(), botsFeature.Store(), client, cfg, logger)
	handler := NewHandler(store, logger)
	return &Feature{store: store, manager: manager, handler: handler}
}

// Store returns the feature's database store.
func (f *Feature) Store() *Store {
	return f.store
}

// Manager returns the sync and refresh task for the orchestrator to drive.
func (f *Feature) Manager() *Manager {
	return f.manager
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "strategies"
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
