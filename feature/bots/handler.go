package bots

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/core/logger"
	"github.com/AgbodesiImoagene/coingro-controller/core/worker"
	"github.com/AgbodesiImoagene/coingro-controller/feature/bots/models"
)

const userLocal = "user"

// Handler handles HTTP requests for bot management and proxies the per-bot
// REST API. Proxy routes address the target bot with a bot_id query param.
type Handler struct {
	store        *Store
	orchestrator *Orchestrator
	client       *coingro.Client
	logger       *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *Store, orchestrator *Orchestrator, client *coingro.Client, logger *zap.Logger) *Handler {
	return &Handler{
		store:        store,
		orchestrator: orchestrator,
		client:       client,
		logger:       logger,
	}
}

// RegisterRoutes registers the bot routes. All routes require user
// authentication.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Use(h.authenticate)

	app.Get("/bots", h.HandleListBots)
	app.Post("/create_bot", h.HandleCreateBot)
	app.Post("/activate_bot", h.HandleActivateBot)
	app.Post("/deactivate_bot", h.HandleDeactivateBot)
	app.Post("/delete_bot", h.HandleDeleteBot)

	// Lifecycle endpoints that also update the persisted bot state.
	app.Post("/start", h.handleStateChange("start", coingro.StateRunning))
	app.Post("/stop", h.handleStateChange("stop", coingro.StateStopped))

	// Config updates that also persist the changed column.
	app.Post("/exchange", h.handleColumnChange("exchange", "exchange"))
	app.Post("/strategy", h.handleColumnChange("strategy", "strategy"))

	// Pass-through endpoints of the bot REST API.
	for _, path := range []string{
		"ping", "version", "show_config", "health", "sysinfo",
		"balance", "count", "performance", "profit", "stats",
		"daily", "weekly", "monthly", "timeunit_profit", "summary",
		"status", "state", "trades", "strategy", "exchange",
		"whitelist", "blacklist", "locks", "logs", "edge",
		"pair_candles", "pair_history", "plot_config", "available_pairs",
		"settings_options",
	} {
		app.Get("/"+path, h.proxyGet(path))
	}
	app.Get("/trade/:tradeid", h.proxyGetParam("trade", "tradeid"))
	app.Delete("/trades/:tradeid", h.proxyDeleteParam("trades", "tradeid"))
	app.Delete("/locks/:lockid", h.proxyDeleteParam("locks", "lockid"))

	for _, path := range []string{
		"stopbuy", "reload_config", "forceenter", "forceexit",
		"blacklist", "blacklist/delete", "locks/delete",
		"settings", "reset_original_config",
	} {
		app.Post("/"+path, h.proxyPost(path))
	}
}

// authenticate resolves the Authorization header (basic auth) against the
// users table and stores the user in the request locals.
func (h *Handler) authenticate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	username, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return unauthorized(c)
	}

	user, err := h.store.UserByUsername(c.Context(), username)
	if err != nil {
		l.Error("User lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "authentication failed",
		})
	}
	if user == nil {
		return unauthorized(c)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return unauthorized(c)
	}

	c.Locals(userLocal, user)
	return c.Next()
}

// HandleListBots returns the caller's active bots. Admins see every bot.
func (h *Handler) HandleListBots(c *fiber.Ctx) error {
	user := currentUser(c)
	l := logger.WithRayID(h.logger, c)

	var (
		bots []models.Bot
		err  error
	)
	if user.Role == models.RoleAdmin || user.Role == models.RoleSuperadmin {
		bots, err = h.store.ActiveBots(c.Context())
	} else {
		bots, err = h.store.BotsByUser(c.Context(), user.ID)
	}
	if err != nil {
		l.Error("Bot listing failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, err)
	}

	responses := make([]models.BotResponse, 0, len(bots))
	for _, bot := range bots {
		responses = append(responses, bot.ToResponse())
	}
	return c.JSON(fiber.Map{"bots": responses})
}

type createBotRequest struct {
	BotID    string `json:"bot_id"`
	UserID   *uint  `json:"user_id"`
	Strategy string `json:"strategy"`
	Exchange string `json:"exchange"`
	State    string `json:"state"`
}

// HandleCreateBot provisions a new bot owned by the caller. Admins may
// provision bots for other users by passing user_id.
func (h *Handler) HandleCreateBot(c *fiber.Ctx) error {
	user := currentUser(c)
	l := logger.WithRayID(h.logger, c)

	var req createBotRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err)
	}

	owner := &user.ID
	if req.UserID != nil {
		if !user.CanManage(req.UserID) {
			return forbidden(c)
		}
		owner = req.UserID
	}

	bot, err := h.orchestrator.CreateBot(c.Context(), CreateBotRequest{
		BotID:    req.BotID,
		UserID:   owner,
		Strategy: req.Strategy,
		Exchange: req.Exchange,
		State:    req.State,
	})
	if err != nil {
		l.Error("Bot creation failed", zap.Error(err))
		return jsonError(c, upstreamStatus(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(bot.ToResponse())
}

type botIDRequest struct {
	BotID string `json:"bot_id"`
}

// HandleActivateBot re-activates a previously deactivated bot.
func (h *Handler) HandleActivateBot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	botID, err := h.authorizedBotID(c)
	if err != nil {
		return renderError(c, err)
	}

	bot, err := h.orchestrator.ActivateBot(c.Context(), botID)
	if err != nil {
		l.Error("Bot activation failed", zap.String("bot_id", botID), zap.Error(err))
		return jsonError(c, upstreamStatus(err), err)
	}
	return c.JSON(bot.ToResponse())
}

// HandleDeactivateBot tears down a bot's instance, keeping its row.
func (h *Handler) HandleDeactivateBot(c *fiber.Ctx) error {
	return h.deactivate(c, false)
}

// HandleDeleteBot tears down a bot's instance and deletes its row.
func (h *Handler) HandleDeleteBot(c *fiber.Ctx) error {
	return h.deactivate(c, true)
}

func (h *Handler) deactivate(c *fiber.Ctx, remove bool) error {
	l := logger.WithRayID(h.logger, c)

	botID, err := h.authorizedBotID(c)
	if err != nil {
		return renderError(c, err)
	}

	if err := h.orchestrator.DeactivateBot(c.Context(), botID, remove); err != nil {
		l.Error("Bot deactivation failed", zap.String("bot_id", botID), zap.Error(err))
		return jsonError(c, upstreamStatus(err), err)
	}
	return c.JSON(fiber.Map{"bot_id": botID, "deleted": remove})
}

// handleStateChange proxies a lifecycle call and persists the new state.
func (h *Handler) handleStateChange(path, state string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := logger.WithRayID(h.logger, c)

		bot, err := h.resolveBot(c)
		if err != nil {
			return renderError(c, err)
		}

		raw, err := h.client.Post(c.Context(), bot.APIURL, path, nil)
		if err != nil {
			l.Error("Bot API call failed",
				zap.String("bot_id", bot.BotID),
				zap.String("path", path),
				zap.Error(err))
			return jsonError(c, upstreamStatus(err), err)
		}

		if err := h.store.SetState(c.Context(), bot.BotID, state); err != nil {
			l.Error("State update failed", zap.String("bot_id", bot.BotID), zap.Error(err))
			return jsonError(c, fiber.StatusInternalServerError, err)
		}
		return c.Type("json").Send(raw)
	}
}

// handleColumnChange proxies a config update to the bot and persists the new
// value in the bot row. The value is read from the request body field named
// after the column.
func (h *Handler) handleColumnChange(path, column string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := logger.WithRayID(h.logger, c)

		bot, err := h.resolveBot(c)
		if err != nil {
			return renderError(c, err)
		}

		var payload map[string]any
		if err := c.BodyParser(&payload); err != nil {
			return jsonMessage(c, fiber.StatusBadRequest, "invalid request body")
		}
		value, _ := payload[column].(string)
		if value == "" {
			return jsonMessage(c, fiber.StatusBadRequest, column+" is required")
		}

		raw, err := h.client.Post(c.Context(), bot.APIURL, path, json.RawMessage(c.Body()))
		if err != nil {
			l.Error("Bot API call failed",
				zap.String("bot_id", bot.BotID),
				zap.String("path", path),
				zap.Error(err))
			return jsonError(c, upstreamStatus(err), err)
		}

		if err := h.store.SetColumn(c.Context(), bot.BotID, column, value); err != nil {
			l.Error("Column update failed", zap.String("bot_id", bot.BotID), zap.Error(err))
			return jsonError(c, fiber.StatusInternalServerError, err)
		}
		return c.Type("json").Send(raw)
	}
}

// proxyGet forwards a GET request to the target bot, passing all query
// params except bot_id through.
func (h *Handler) proxyGet(path string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bot, err := h.resolveBot(c)
		if err != nil {
			return renderError(c, err)
		}
		return h.forward(c, bot, func() (json.RawMessage, error) {
			return h.client.Get(c.Context(), bot.APIURL, path, forwardedParams(c))
		})
	}
}

// proxyGetParam forwards a GET request with a path parameter appended.
func (h *Handler) proxyGetParam(path, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bot, err := h.resolveBot(c)
		if err != nil {
			return renderError(c, err)
		}
		target := path + "/" + c.Params(param)
		return h.forward(c, bot, func() (json.RawMessage, error) {
			return h.client.Get(c.Context(), bot.APIURL, target, forwardedParams(c))
		})
	}
}

// proxyDeleteParam forwards a DELETE request with a path parameter appended.
func (h *Handler) proxyDeleteParam(path, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bot, err := h.resolveBot(c)
		if err != nil {
			return renderError(c, err)
		}
		target := path + "/" + c.Params(param)
		return h.forward(c, bot, func() (json.RawMessage, error) {
			return h.client.Delete(c.Context(), bot.APIURL, target, nil)
		})
	}
}

// proxyPost forwards a POST request with the original JSON body.
func (h *Handler) proxyPost(path string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bot, err := h.resolveBot(c)
		if err != nil {
			return renderError(c, err)
		}
		var body any
		if len(c.Body()) > 0 {
			body = json.RawMessage(c.Body())
		}
		return h.forward(c, bot, func() (json.RawMessage, error) {
			return h.client.Post(c.Context(), bot.APIURL, path, body)
		})
	}
}

func (h *Handler) forward(c *fiber.Ctx, bot *models.Bot, call func() (json.RawMessage, error)) error {
	l := logger.WithRayID(h.logger, c)

	raw, err := call()
	if err != nil {
		l.Error("Bot API call failed",
			zap.String("bot_id", bot.BotID),
			zap.String("path", c.Path()),
			zap.Error(err))
		return jsonError(c, upstreamStatus(err), err)
	}
	return c.Type("json").Send(raw)
}

// resolveBot loads the bot addressed by the bot_id query param and checks
// that the caller may manage it. Failures come back as *fiber.Error for the
// caller to render.
func (h *Handler) resolveBot(c *fiber.Ctx) (*models.Bot, error) {
	botID := c.Query("bot_id")
	if botID == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "bot_id query param is required")
	}

	bot, err := h.store.BotByID(c.Context(), botID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if bot == nil || !bot.IsActive {
		return nil, fiber.NewError(fiber.StatusNotFound, "bot not found")
	}
	if !currentUser(c).CanManage(bot.UserID) {
		return nil, fiber.NewError(fiber.StatusForbidden, "forbidden")
	}
	return bot, nil
}

// authorizedBotID reads bot_id from the request body and checks ownership.
// Unlike resolveBot it also accepts inactive bots.
func (h *Handler) authorizedBotID(c *fiber.Ctx) (string, error) {
	var req botIDRequest
	if err := c.BodyParser(&req); err != nil || req.BotID == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "bot_id is required")
	}

	bot, err := h.store.BotByID(c.Context(), req.BotID)
	if err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if bot == nil {
		return "", fiber.NewError(fiber.StatusNotFound, "bot not found")
	}
	if !currentUser(c).CanManage(bot.UserID) {
		return "", fiber.NewError(fiber.StatusForbidden, "forbidden")
	}
	return bot.BotID, nil
}

// renderError writes a *fiber.Error as a JSON response.
func renderError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return jsonMessage(c, fe.Code, fe.Message)
	}
	return jsonError(c, fiber.StatusInternalServerError, err)
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocal).(*models.User)
	if user == nil {
		// authenticate always runs first; treat a missing user as anonymous.
		return &models.User{}
	}
	return user
}

// forwardedParams copies the request query params, dropping the routing
// param bot_id.
func forwardedParams(c *fiber.Ctx) url.Values {
	params := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		if string(key) == "bot_id" {
			return
		}
		params.Add(string(key), string(value))
	})
	return params
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	return username, password, ok
}

// upstreamStatus maps bot API failures to a gateway status and everything
// else to an internal error.
func upstreamStatus(err error) int {
	if worker.IsTemporary(err) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func jsonError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func jsonMessage(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="coingro-controller"`)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
}
