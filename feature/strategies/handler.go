package strategies

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/logger"
)

// Handler handles HTTP requests for the strategy catalog. The catalog is
// read-only and public; strategy bots themselves are managed through the
// bots routes.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the strategy routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/strategies")
	group.Get("/", h.HandleListStrategies)
	group.Get("/:name", h.HandleGetStrategy)
}

// HandleListStrategies returns all catalog strategies with their stats.
func (h *Handler) HandleListStrategies(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	strategies, err := h.store.All(c.Context())
	if err != nil {
		l.Error("Strategy listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	responses := make([]StrategyResponse, 0, len(strategies))
	for _, strategy := range strategies {
		responses = append(responses, strategy.ToResponse())
	}
	return c.JSON(fiber.Map{"strategies": responses})
}

// HandleGetStrategy returns a single strategy by name.
func (h *Handler) HandleGetStrategy(c *fiber.Ctx) error {
	name := c.Params("name")
	l := logger.WithRayID(h.logger, c)

	strategy, err := h.store.ByName(c.Context(), name)
	if err != nil {
		l.Error("Strategy lookup failed", zap.String("name", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if strategy == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "strategy not found",
		})
	}
	return c.JSON(strategy.ToResponse())
}
