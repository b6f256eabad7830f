package bots

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/AgbodesiImoagene/coingro-controller/feature/bots/models"
)

// Store wraps database access for bot and user rows.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store around an open database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the bots and users tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&models.User{}, &models.Bot{})
}

// ActiveBots returns all bots currently marked active.
func (s *Store) ActiveBots(ctx context.Context) ([]models.Bot, error) {
	var bots []models.Bot
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&bots).Error; err != nil {
		return nil, fmt.Errorf("failed to list active bots: %w", err)
	}
	return bots, nil
}

// StrategyBots returns all bots that back a catalog strategy.
func (s *Store) StrategyBots(ctx context.Context) ([]models.Bot, error) {
	var bots []models.Bot
	if err := s.db.WithContext(ctx).Where("is_strategy = ?", true).Find(&bots).Error; err != nil {
		return nil, fmt.Errorf("failed to list strategy bots: %w", err)
	}
	return bots, nil
}

// BotByID looks a bot up by its bot ID. Returns nil without error when no
// such bot exists.
func (s *Store) BotByID(ctx context.Context, botID string) (*models.Bot, error) {
	var bot models.Bot
	err := s.db.WithContext(ctx).Where("bot_id = ?", botID).First(&bot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up bot %q: %w", botID, err)
	}
	return &bot, nil
}

// BotByIDUnscoped looks a bot up by its bot ID, including soft-deleted rows.
// Deleted rows keep holding the bot_id unique index, so provisioning has to
// see them. Returns nil without error when no such bot ever existed.
func (s *Store) BotByIDUnscoped(ctx context.Context, botID string) (*models.Bot, error) {
	var bot models.Bot
	err := s.db.WithContext(ctx).Unscoped().Where("bot_id = ?", botID).First(&bot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up bot %q: %w", botID, err)
	}
	return &bot, nil
}

// BotsByUser returns all active bots owned by a user.
func (s *Store) BotsByUser(ctx context.Context, userID uint) ([]models.Bot, error) {
	var bots []models.Bot
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&bots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bots for user %d: %w", userID, err)
	}
	return bots, nil
}

// Save inserts or updates a bot row.
func (s *Store) Save(ctx context.Context, bot *models.Bot) error {
	if err := s.db.WithContext(ctx).Save(bot).Error; err != nil {
		return fmt.Errorf("failed to save bot %q: %w", bot.BotID, err)
	}
	return nil
}

// SetState updates the persisted run state of a bot.
func (s *Store) SetState(ctx context.Context, botID, state string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Bot{}).
		Where("bot_id = ?", botID).
		Update("state", state).Error
	if err != nil {
		return fmt.Errorf("failed to update state of bot %q: %w", botID, err)
	}
	return nil
}

// SetColumn updates a single persisted bot column. The column name must be a
// fixed identifier, never request input.
func (s *Store) SetColumn(ctx context.Context, botID, column, value string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Bot{}).
		Where("bot_id = ?", botID).
		Update(column, value).Error
	if err != nil {
		return fmt.Errorf("failed to update %s of bot %q: %w", column, botID, err)
	}
	return nil
}

// Deactivate marks a bot inactive. With remove set the row is also
// soft-deleted, which retires the bot ID permanently: the row keeps holding
// the unique index, so the ID can never be provisioned again.
func (s *Store) Deactivate(ctx context.Context, botID string, remove bool) error {
	tx := s.db.WithContext(ctx).
		Model(&models.Bot{}).
		Where("bot_id = ?", botID).
		Updates(map[string]any{"is_active": false, "state": "stopped"})
	if tx.Error != nil {
		return fmt.Errorf("failed to deactivate bot %q: %w", botID, tx.Error)
	}

	if remove {
		err := s.db.WithContext(ctx).Where("bot_id = ?", botID).Delete(&models.Bot{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete bot %q: %w", botID, err)
		}
	}
	return nil
}

// UserByUsername looks a user up by username. Returns nil without error when
// no such user exists.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	return &user, nil
}
