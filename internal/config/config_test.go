package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gpt-4", cfg.Models.Default)
	assert.NotEmpty(t, cfg.Models.Aliases)
	assert.Equal(t, "whole", cfg.Engine.EditFormat)
	assert.True(t, cfg.Engine.AutoCommits)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 30, cfg.History.MaxAge)
	assert.Equal(t, 10, cfg.Search.Timeout)
	assert.True(t, cfg.Watcher.Enabled)
	assert.False(t, cfg.Heartbeat.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Redaction)
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty default model",
			mutate:  func(c *Config) { c.Models.Default = "" },
			wantErr: "models.default",
		},
		{
			name:    "unknown edit format",
			mutate:  func(c *Config) { c.Engine.EditFormat = "diff" },
			wantErr: "edit format",
		},
		{
			name:    "negative search timeout",
			mutate:  func(c *Config) { c.Search.Timeout = -1 },
			wantErr: "search.timeout",
		},
		{
			name:    "negative history max age",
			mutate:  func(c *Config) { c.History.MaxAge = -1 },
			wantErr: "history.max_age",
		},
		{
			name: "heartbeat enabled without interval",
			mutate: func(c *Config) {
				c.Heartbeat.Enabled = true
				c.Heartbeat.Interval = 0
			},
			wantErr: "heartbeat.interval",
		},
		{
			name:    "negative stability threshold",
			mutate:  func(c *Config) { c.Watcher.StabilityThreshold = -5 },
			wantErr: "stability_threshold",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10*time.Second, cfg.SearchTimeout())
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval())
	assert.Equal(t, 30*24*time.Hour, cfg.HistoryMaxAge())
	assert.Equal(t, 100*time.Millisecond, cfg.StabilityThreshold())
}

func TestString(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.String()

	assert.Contains(t, s, `"models"`)
	assert.Contains(t, s, `"gpt-4"`)
}
