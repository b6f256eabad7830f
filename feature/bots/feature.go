package bots

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/core/k8s"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	store        *Store
	orchestrator *Orchestrator
	handler      *Handler
}

// NewFeature creates a new bots feature.
func NewFeature(db *gorm.DB, cluster k8s.Client, client *coingro.Client, cfg *coingro.Config, logger *zap.Logger) *Feature {
	store := NewStore(db)
	orchestrator := NewOrchestrator(store, cluster, cfg, logger)
	handler := NewHandler(store, orchestrator, client, logger)
	return &Feature{store: store, orchestrator: orchestrator, handler: handler}
}

// Store returns the feature's database store.
func (f *Feature) Store() *Store {
	return f.store
}

// Orchestrator returns the reconcile controller driven by the worker loop.
func (f *Feature) Orchestrator() *Orchestrator {
	return f.orchestrator
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "bots"
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
