package coingro

import (
	"errors"
	"fmt"
	"strings"
)

// Valid initial bot states.
const (
	StateRunning = "running"
	StateStopped = "stopped"
)

// Config holds settings for the managed coingro bot instances.
type Config struct {
	// Image is the container image to run bot instances from.
	Image string `mapstructure:"image" default:""`
	// Version is the bot version deployed with Image.
	Version string `mapstructure:"version" default:""`
	// APIPort is the port each bot's REST API listens on.
	APIPort int `mapstructure:"api_port" default:"8080"`
	// APIPrefix is the router prefix of the bot REST API (e.g. api/v1).
	APIPrefix string `mapstructure:"api_prefix" default:"api/v1"`
	// InitialState is the state new user bots start in (running or stopped).
	InitialState string `mapstructure:"initial_state" default:"stopped"`
	// ImagePullSecret is the name of the registry pull secret, if any.
	ImagePullSecret string `mapstructure:"image_pull_secret" default:""`
	// DataPVCClaim is the persistent volume claim mounted into each bot.
	DataPVCClaim string `mapstructure:"data_pvc_claim" default:"coingro-user-data-pvc-claim"`
	// Username is the basic auth username for the bot REST APIs.
	Username string `mapstructure:"username" default:""`
	// Password is the basic auth password for the bot REST APIs.
	Password string `mapstructure:"password" default:""`
	// Env holds additional environment variables passed to every bot.
	Env map[string]string `mapstructure:"env"`
}

// Validate checks that the required bot settings are present.
func (c Config) Validate() error {
	if c.Image == "" {
		return errors.New("coingro.image is required")
	}
	if c.Version == "" {
		return errors.New("coingro.version is required")
	}
	switch c.InitialState {
	case StateRunning, StateStopped:
	default:
		return fmt.Errorf("coingro.initial_state must be %q or %q, got %q",
			StateRunning, StateStopped, c.InitialState)
	}
	return nil
}

// APIURL returns the in-cluster base URL for a bot's REST API. Bots are
// reachable through a service named after the bot.
func (c Config) APIURL(name string) string {
	if prefix := strings.Trim(c.APIPrefix, "/"); prefix != "" {
		return fmt.Sprintf("http://%s/%s", name, prefix)
	}
	return fmt.Sprintf("http://%s", name)
}
