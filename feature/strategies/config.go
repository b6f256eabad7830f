package strategies

// Config holds settings for the strategy catalog and refresh cycle.
type Config struct {
	// Prefix is the object key prefix strategy manifests are listed under.
	Prefix string `mapstructure:"prefix" default:"strategies/"`
	// RefreshIntervalHours is how often per-strategy performance stats are
	// refreshed from the bot APIs.
	RefreshIntervalHours int `mapstructure:"refresh_interval_hours" default:"24"`
}
