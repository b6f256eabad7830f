package strategies

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Strategy represents the 'strategies' table: one row per catalog strategy,
// backed by a dedicated bot instance whose trading results feed the
// performance columns.
type Strategy struct {
	ID               uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Name             string `gorm:"column:name;size:255;uniqueIndex"`
	BotID            string `gorm:"column:bot_id;size:64;index"`
	Category         string `gorm:"column:category;size:255"`
	Exchange         string `gorm:"column:exchange;size:64"`
	Tags             string `gorm:"column:tags;size:512"`
	ShortDescription string `gorm:"column:short_description;size:512"`
	LongDescription  string `gorm:"column:long_description;type:text"`

	DailyProfit       float64 `gorm:"column:daily_profit"`
	DailyTradeCount   int     `gorm:"column:daily_trade_count"`
	WeeklyProfit      float64 `gorm:"column:weekly_profit"`
	WeeklyTradeCount  int     `gorm:"column:weekly_trade_count"`
	MonthlyProfit     float64 `gorm:"column:monthly_profit"`
	MonthlyTradeCount int     `gorm:"column:monthly_trade_count"`

	ProfitRatioMean float64 `gorm:"column:profit_ratio_mean"`
	ProfitRatioSum  float64 `gorm:"column:profit_ratio_sum"`
	ProfitRatio     float64 `gorm:"column:profit_ratio"`
	WinningTrades   int     `gorm:"column:winning_trades"`
	LosingTrades    int     `gorm:"column:losing_trades"`
	FirstTrade      int64   `gorm:"column:first_trade"`
	LatestTrade     int64   `gorm:"column:latest_trade"`
	AvgDuration     string  `gorm:"column:avg_duration;size:64"`

	LatestRefresh *time.Time     `gorm:"column:latest_refresh"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name for strategies.
func (Strategy) TableName() string {
	return "strategies"
}

// StrategyResponse is the API representation of a strategy row.
type StrategyResponse struct {
	Name             string   `json:"name"`
	Category         string   `json:"category,omitempty"`
	Exchange         string   `json:"exchange,omitempty"`
	Tags             []string `json:"tags"`
	ShortDescription string   `json:"short_description,omitempty"`
	LongDescription  string   `json:"long_description,omitempty"`

	DailyProfit       float64 `json:"daily_profit"`
	DailyTradeCount   int     `json:"daily_trade_count"`
	WeeklyProfit      float64 `json:"weekly_profit"`
	WeeklyTradeCount  int     `json:"weekly_trade_count"`
	MonthlyProfit     float64 `json:"monthly_profit"`
	MonthlyTradeCount int     `json:"monthly_trade_count"`

	ProfitRatioMean float64 `json:"profit_ratio_mean"`
	ProfitRatioSum  float64 `json:"profit_ratio_sum"`
	ProfitRatio     float64 `json:"profit_ratio"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	FirstTrade      int64   `json:"first_trade,omitempty"`
	LatestTrade     int64   `json:"latest_trade,omitempty"`
	AvgDuration     string  `json:"avg_duration,omitempty"`

	LatestRefresh *time.Time `json:"latest_refresh,omitempty"`
}

// ToResponse converts the row to its API representation.
func (s Strategy) ToResponse() StrategyResponse {
	var tags []string
	if s.Tags != "" {
		tags = strings.Split(s.Tags, ",")
	}
	return StrategyResponse{
		Name:              s.Name,
		Category:          s.Category,
		Exchange:          s.Exchange,
		Tags:              tags,
		ShortDescription:  s.ShortDescription,
		LongDescription:   s.LongDescription,
		DailyProfit:       s.DailyProfit,
		DailyTradeCount:   s.DailyTradeCount,
		WeeklyProfit:      s.WeeklyProfit,
		WeeklyTradeCount:  s.WeeklyTradeCount,
		MonthlyProfit:     s.MonthlyProfit,
		MonthlyTradeCount: s.MonthlyTradeCount,
		ProfitRatioMean:   s.ProfitRatioMean,
		ProfitRatioSum:    s.ProfitRatioSum,
		ProfitRatio:       s.ProfitRatio,
		WinningTrades:     s.WinningTrades,
		LosingTrades:      s.LosingTrades,
		FirstTrade:        s.FirstTrade,
		LatestTrade:       s.LatestTrade,
		AvgDuration:       s.AvgDuration,
		LatestRefresh:     s.LatestRefresh,
	}
}
