package strategies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store wraps database access for strategy rows.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store around an open database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the strategies table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&Strategy{})
}

// All returns every strategy, ordered by name.
func (s *Store) All(ctx context.Context) ([]Strategy, error) {
	var strategies []Strategy
	if err := s.db.WithContext(ctx).Order("name").Find(&strategies).Error; err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return strategies, nil
}

// ByName looks a strategy up by name. Returns nil without error when no such
// strategy exists.
func (s *Store) ByName(ctx context.Context, name string) (*Strategy, error) {
	var strategy Strategy
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&strategy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up strategy %q: %w", name, err)
	}
	return &strategy, nil
}

// Stale returns strategies whose stats were last refreshed before cutoff,
// including ones never refreshed.
func (s *Store) Stale(ctx context.Context, cutoff time.Time) ([]Strategy, error) {
	var strategies []Strategy
	err := s.db.WithContext(ctx).
		Where("latest_refresh IS NULL OR latest_refresh < ?", cutoff).
		Find(&strategies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale strategies: %w", err)
	}
	return strategies, nil
}

// Save inserts or updates a strategy row.
func (s *Store) Save(ctx context.Context, strategy *Strategy) error {
	if err := s.db.WithContext(ctx).Save(strategy).Error; err != nil {
		return fmt.Errorf("failed to save strategy %q: %w", strategy.Name, err)
	}
	return nil
}
