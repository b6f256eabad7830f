package bots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/core/k8s"
	"github.com/AgbodesiImoagene/coingro-controller/core/metrics"
	"github.com/AgbodesiImoagene/coingro-controller/core/worker"
	"github.com/AgbodesiImoagene/coingro-controller/feature/bots/models"
)

// Environment variables injected into bot containers.
const (
	strategyEnvVar     = "COINGRO__STRATEGY"
	initialStateEnvVar = "COINGRO__INITIAL_STATE"
)

const botIDAttempts = 5

// Refresher is a periodic task run at the end of each reconcile iteration.
// The strategies feature registers its stats refresh here.
type Refresher interface {
	// Name returns the task name used in logs.
	Name() string
	// Refresh runs one pass of the task.
	Refresh(ctx context.Context) error
}

// Orchestrator reconciles bot rows in the database with pods in the cluster.
// It implements the worker loop's controller interface.
type Orchestrator struct {
	store   *Store
	cluster k8s.Client
	bot     *coingro.Config
	logger  *zap.Logger

	mu         sync.RWMutex
	state      worker.State
	refreshers []Refresher
}

// NewOrchestrator creates an orchestrator in the running state.
func NewOrchestrator(store *Store, cluster k8s.Client, bot *coingro.Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		cluster: cluster,
		bot:     bot,
		logger:  logger,
		state:   worker.StateRunning,
	}
}

// AddRefresher registers a task to run after each reconcile pass. Must be
// called during wiring, before the worker loop starts; registration is not
// synchronized.
func (o *Orchestrator) AddRefresher(r Refresher) {
	o.refreshers = append(o.refreshers, r)
}

// State returns the current run state.
func (o *Orchestrator) State() worker.State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// SetState transitions the run state.
func (o *Orchestrator) SetState(state worker.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = state
}

// Startup ensures the bot namespace exists before the first reconcile pass.
func (o *Orchestrator) Startup(ctx context.Context) error {
	return o.cluster.EnsureNamespace(ctx)
}

// Process runs one reconcile iteration: repair bot instances, then run the
// registered refresh tasks.
func (o *Orchestrator) Process(ctx context.Context) error {
	metrics.ReconcileIterations.Inc()

	err := o.CheckBots(ctx)

	for _, r := range o.refreshers {
		if rerr := r.Refresh(ctx); rerr != nil {
			o.logger.Error("Refresh task failed",
				zap.String("task", r.Name()),
				zap.Error(rerr))
			err = errors.Join(err, rerr)
		}
	}

	if err != nil {
		metrics.ReconcileErrors.Inc()
	}
	return err
}

// ProcessStopped is a no-op; a stopped controller only heartbeats.
func (o *Orchestrator) ProcessStopped(ctx context.Context) error {
	return nil
}

// Cleanup is called once on shutdown.
func (o *Orchestrator) Cleanup() {
	o.logger.Info("Orchestrator cleanup complete")
}

// CheckBots ensures every active bot row has a running pod, creating missing
// instances and replacing ones stuck in a non-running phase.
func (o *Orchestrator) CheckBots(ctx context.Context) error {
	bots, err := o.store.ActiveBots(ctx)
	if err != nil {
		return err
	}
	metrics.ActiveBots.Set(float64(len(bots)))

	var errs []error
	for _, bot := range bots {
		instance, err := o.cluster.GetInstance(ctx, bot.BotID)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		env := o.botEnv(bot)
		switch {
		case instance == nil:
			o.logger.Info("Recreating missing bot instance", zap.String("bot_id", bot.BotID))
			err = o.cluster.CreateInstance(ctx, bot.BotID, env)
		case !instance.Running():
			o.logger.Warn("Replacing unhealthy bot instance",
				zap.String("bot_id", bot.BotID),
				zap.String("phase", instance.Phase))
			err = o.cluster.ReplaceInstance(ctx, bot.BotID, env)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// CreateBotRequest describes a bot to provision.
type CreateBotRequest struct {
	// BotID is the fixed bot ID to use. Empty means generate one.
	BotID string
	// UserID is the owning user, nil for system-owned bots.
	UserID *uint
	// Strategy is the trading strategy the bot runs, if any.
	Strategy string
	// Exchange is the exchange the bot trades on.
	Exchange string
	// IsStrategy marks bots that back a catalog strategy.
	IsStrategy bool
	// State is the initial run state. Empty means the configured default.
	State string
}

// CreateBot provisions a bot instance in the cluster and upserts its row.
// An existing bot with the same ID is replaced rather than duplicated.
func (o *Orchestrator) CreateBot(ctx context.Context, req CreateBotRequest) (*models.Bot, error) {
	existing, err := o.resolveBotID(ctx, &req)
	if err != nil {
		return nil, err
	}

	state := req.State
	if state == "" {
		state = o.bot.InitialState
	}

	bot := existing
	if bot == nil {
		bot = &models.Bot{BotID: req.BotID, UserID: req.UserID}
	}
	bot.Image = o.bot.Image
	bot.Version = o.bot.Version
	bot.APIURL = o.bot.APIURL(req.BotID)
	bot.Strategy = req.Strategy
	bot.Exchange = req.Exchange
	bot.State = state
	bot.IsActive = true
	bot.IsStrategy = req.IsStrategy

	env := o.botEnv(*bot)
	instance, err := o.cluster.GetInstance(ctx, bot.BotID)
	if err != nil {
		return nil, err
	}
	if instance != nil {
		err = o.cluster.ReplaceInstance(ctx, bot.BotID, env)
	} else {
		err = o.cluster.CreateInstance(ctx, bot.BotID, env)
	}
	if err != nil {
		return nil, err
	}

	if err := o.store.Save(ctx, bot); err != nil {
		return nil, err
	}

	o.logger.Info("Provisioned bot",
		zap.String("bot_id", bot.BotID),
		zap.String("strategy", bot.Strategy),
		zap.Bool("is_strategy", bot.IsStrategy))
	return bot, nil
}

// ActivateBot re-activates a deactivated bot and recreates its instance.
func (o *Orchestrator) ActivateBot(ctx context.Context, botID string) (*models.Bot, error) {
	bot, err := o.store.BotByID(ctx, botID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, fmt.Errorf("bot %q does not exist", botID)
	}
	if bot.IsActive {
		return bot, nil
	}

	bot.IsActive = true
	instance, err := o.cluster.GetInstance(ctx, botID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		if err := o.cluster.CreateInstance(ctx, botID, o.botEnv(*bot)); err != nil {
			return nil, err
		}
	}
	if err := o.store.Save(ctx, bot); err != nil {
		return nil, err
	}

	o.logger.Info("Activated bot", zap.String("bot_id", botID))
	return bot, nil
}

// DeactivateBot tears down a bot's instance and marks the row inactive.
// With remove set the row is also deleted, retiring the ID permanently.
func (o *Orchestrator) DeactivateBot(ctx context.Context, botID string, remove bool) error {
	bot, err := o.store.BotByID(ctx, botID)
	if err != nil {
		return err
	}
	if bot == nil {
		return fmt.Errorf("bot %q does not exist", botID)
	}

	if err := o.cluster.DeleteInstance(ctx, botID); err != nil {
		return err
	}
	if err := o.store.Deactivate(ctx, botID, remove); err != nil {
		return err
	}

	o.logger.Info("Deactivated bot",
		zap.String("bot_id", botID),
		zap.Bool("removed", remove))
	return nil
}

// resolveBotID fills in req.BotID, generating a fresh unique ID when none was
// given, and returns the existing row for fixed IDs. Lookups are unscoped:
// a soft-deleted row still occupies the bot_id unique index, so its ID can
// never be provisioned again.
func (o *Orchestrator) resolveBotID(ctx context.Context, req *CreateBotRequest) (*models.Bot, error) {
	if req.BotID != "" {
		existing, err := o.store.BotByIDUnscoped(ctx, req.BotID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.DeletedAt.Valid {
			return nil, fmt.Errorf("bot %q has been deleted", req.BotID)
		}
		return existing, nil
	}

	for i := 0; i < botIDAttempts; i++ {
		candidate := "bot-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
		existing, err := o.store.BotByIDUnscoped(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			req.BotID = candidate
			return nil, nil
		}
	}
	return nil, errors.New("failed to generate a unique bot ID")
}

// botEnv builds the per-bot container environment.
func (o *Orchestrator) botEnv(bot models.Bot) map[string]string {
	env := map[string]string{}
	if bot.Strategy != "" {
		env[strategyEnvVar] = bot.Strategy
	}
	if bot.State != "" {
		env[initialStateEnvVar] = bot.State
	}
	return env
}
