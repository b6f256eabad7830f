package server

import "strings"

// Config holds configuration for the HTTP API server.
type Config struct {
	// Enabled toggles the REST API server.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables
	// the API key check (user authorization still applies).
	ApiKey string `mapstructure:"api_key" default:""`
	// CorsOrigins is a comma separated list of allowed CORS origins.
	CorsOrigins string `mapstructure:"cors_origins" default:""`
}

// Origins returns the configured CORS origins as a slice.
func (c Config) Origins() []string {
	if c.CorsOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CorsOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
