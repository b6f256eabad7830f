package config

import (
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/core/database"
	"github.com/AgbodesiImoagene/coingro-controller/core/k8s"
	"github.com/AgbodesiImoagene/coingro-controller/core/logger"
	"github.com/AgbodesiImoagene/coingro-controller/core/server"
	"github.com/AgbodesiImoagene/coingro-controller/core/storage"
	"github.com/AgbodesiImoagene/coingro-controller/core/worker"
	"github.com/AgbodesiImoagene/coingro-controller/feature/strategies"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP API server.
	Server server.Config `mapstructure:"server"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Kubernetes holds configuration for the cluster connection.
	Kubernetes k8s.Config `mapstructure:"kubernetes"`
	// Coingro holds settings for the managed bot instances.
	Coingro coingro.Config `mapstructure:"coingro"`
	// Storage holds configuration for the object storage (strategy catalog).
	Storage storage.Config `mapstructure:"storage"`
	// Strategies holds settings for the strategy catalog and refresh cycle.
	Strategies strategies.Config `mapstructure:"strategies"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Internals holds the worker loop timing settings.
	Internals worker.Config `mapstructure:"internals"`
}

// Validate checks cross-section invariants that defaults cannot guarantee.
func (c *Config) Validate() error {
	return c.Coingro.Validate()
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default
// values in Viper based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Maps and slices have no scalar default; they are only settable
		// through explicit configuration.
		if field.Type.Kind() == reflect.Map || field.Type.Kind() == reflect.Slice {
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
