package coingro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Image:        "registry.local/coingro",
		Version:      "2024.8",
		APIPrefix:    "api/v1",
		InitialState: StateStopped,
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	missing := validConfig()
	missing.Image = ""
	assert.Error(t, missing.Validate())

	noVersion := validConfig()
	noVersion.Version = ""
	assert.Error(t, noVersion.Validate())

	badState := validConfig()
	badState.InitialState = "paused"
	assert.Error(t, badState.Validate())
}

func TestAPIURL(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http://bot-aaa/api/v1", cfg.APIURL("bot-aaa"))

	cfg.APIPrefix = ""
	assert.Equal(t, "http://bot-aaa", cfg.APIURL("bot-aaa"))

	cfg.APIPrefix = "/api/v1/"
	assert.Equal(t, "http://bot-aaa/api/v1", cfg.APIURL("bot-aaa"))
}

func TestTemporaryError(t *testing.T) {
	err := NewTemporaryError(assert.AnError)
	assert.True(t, err.Temporary())
	assert.ErrorIs(t, err, assert.AnError)
}
