package strategies

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/feature/bots"
)

// Manager keeps the strategy catalog in sync with the database and the
// cluster. Every catalog strategy gets a dedicated bot instance that trades
// it; the manager periodically pulls that bot's profit stats back into the
// strategy row. It runs as a refresh task of the bot orchestrator.
type Manager struct {
	store       *Store
	catalog     *Catalog
	provisioner *bots.Orchestrator
	botStore    *bots.Store
	client      *coingro.Client
	logger      *zap.Logger

	refreshInterval time.Duration
}

// NewManager creates a strategy manager.
func NewManager(store *Store, catalog *Catalog, provisioner *bots.Orchestrator, botStore *bots.Store,
	client *coingro.Client, cfg Config, logger *zap.Logger) *Manager {
	interval := cfg.RefreshIntervalHours
	if interval <= 0 {
		interval = 24
	}
	return &Manager{
		store:           store,
		catalog:         catalog,
		provisioner:     provisioner,
		botStore:        botStore,
		client:          client,
		logger:          logger,
		refreshInterval: time.Duration(interval) * time.Hour,
	}
}

// Name returns the refresh task name.
func (m *Manager) Name() string {
	return "strategies"
}

// Refresh runs one pass: sync the catalog, then refresh stale stats.
// Per-strategy stats failures are logged rather than surfaced so one broken
// bot cannot stall the others.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := m.Sync(ctx); err != nil {
		return err
	}
	m.refreshStats(ctx)
	return nil
}

// Sync provisions a bot for every catalog strategy that lacks one and keeps
// the stored metadata in line with the manifests.
func (m *Manager) Sync(ctx context.Context) error {
	manifests, err := m.catalog.List(ctx)
	if err != nil {
		return err
	}

	for _, manifest := range manifests {
		existing, err := m.store.ByName(ctx, manifest.Name)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := m.provision(ctx, manifest); err != nil {
				return err
			}
			continue
		}

		existing.Category = manifest.Category
		existing.Exchange = manifest.Exchange
		existing.Tags = strings.Join(manifest.Tags, ",")
		existing.ShortDescription = manifest.ShortDescription
		existing.LongDescription = manifest.LongDescription
		if err := m.store.Save(ctx, existing); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) provision(ctx context.Context, manifest Manifest) error {
	bot, err := m.provisioner.CreateBot(ctx, bots.CreateBotRequest{
		Strategy:   manifest.Name,
		Exchange:   manifest.Exchange,
		IsStrategy: true,
		State:      coingro.StateRunning,
	})
	if err != nil {
		return err
	}

	m.logger.Info("Provisioned strategy bot",
		zap.String("strategy", manifest.Name),
		zap.String("bot_id", bot.BotID))

	return m.store.Save(ctx, &Strategy{
		Name:             manifest.Name,
		BotID:            bot.BotID,
		Category:         manifest.Category,
		Exchange:         manifest.Exchange,
		Tags:             strings.Join(manifest.Tags, ","),
		ShortDescription: manifest.ShortDescription,
		LongDescription:  manifest.LongDescription,
	})
}

// refreshStats pulls profit stats from the backing bots of strategies whose
// last refresh is older than the configured interval.
func (m *Manager) refreshStats(ctx context.Context) {
	cutoff := time.Now().Add(-m.refreshInterval)
	stale, err := m.store.Stale(ctx, cutoff)
	if err != nil {
		m.logger.Error("Stale strategy lookup failed", zap.Error(err))
		return
	}

	for i := range stale {
		if err := m.refreshOne(ctx, &stale[i]); err != nil {
			m.logger.Warn("Strategy stats refresh failed",
				zap.String("strategy", stale[i].Name),
				zap.Error(err))
		}
	}
}

func (m *Manager) refreshOne(ctx context.Context, strategy *Strategy) error {
	bot, err := m.botStore.BotByID(ctx, strategy.BotID)
	if err != nil {
		return err
	}
	if bot == nil || !bot.IsActive {
		m.logger.Warn("Strategy has no active backing bot",
			zap.String("strategy", strategy.Name),
			zap.String("bot_id", strategy.BotID))
		return nil
	}

	profit, err := m.client.Profit(ctx, bot.APIURL)
	if err != nil {
		return err
	}
	daily, err := m.client.TimeunitProfit(ctx, bot.APIURL, "days")
	if err != nil {
		return err
	}
	weekly, err := m.client.TimeunitProfit(ctx, bot.APIURL, "weeks")
	if err != nil {
		return err
	}
	monthly, err := m.client.TimeunitProfit(ctx, bot.APIURL, "months")
	if err != nil {
		return err
	}

	now := time.Now()
	strategy.DailyProfit = daily.RelProfit
	strategy.DailyTradeCount = daily.TradeCount
	strategy.WeeklyProfit = weekly.RelProfit
	strategy.WeeklyTradeCount = weekly.TradeCount
	strategy.MonthlyProfit = monthly.RelProfit
	strategy.MonthlyTradeCount = monthly.TradeCount
	strategy.ProfitRatioMean = profit.ProfitAllRatioMean
	strategy.ProfitRatioSum = profit.ProfitAllRatioSum
	strategy.ProfitRatio = profit.ProfitAllRatio
	strategy.WinningTrades = profit.WinningTrades
	strategy.LosingTrades = profit.LosingTrades
	strategy.FirstTrade = profit.FirstTradeTimestamp
	strategy.LatestTrade = profit.LatestTradeTimestamp
	strategy.AvgDuration = profit.AvgDuration
	strategy.LatestRefresh = &now

	return m.store.Save(ctx, strategy)
}
