package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrigins(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		cfg := Config{}
		assert.Nil(t, cfg.Origins())
	})

	t.Run("Single", func(t *testing.T) {
		cfg := Config{CorsOrigins: "https://app.coingro.io"}
		assert.Equal(t, []string{"https://app.coingro.io"}, cfg.Origins())
	})

	t.Run("Multiple With Whitespace", func(t *testing.T) {
		cfg := Config{CorsOrigins: "https://a.example, https://b.example ,"}
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	})
}
