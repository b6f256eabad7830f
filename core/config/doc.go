// Package config provides configuration management for the controller.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Each subsystem owns its Config struct; this package
// assembles them and registers their defaults.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings:
//   - Server: HTTP API settings (port, API key, CORS)
//   - Database: MySQL connection details
//   - Kubernetes: cluster connection and bot namespace
//   - Coingro: bot image, version and per-bot API settings
//   - Storage: S3/MinIO credentials for the strategy catalog
//   - Strategies: catalog prefix and stats refresh interval
//   - Log: logging level and format
//   - Internals: worker loop timings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
