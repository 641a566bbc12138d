package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config represents the main edbridge configuration
type Config struct {
	// Models
	Models ModelsConfig `json:"models" mapstructure:"models"`

	// Engine
	Engine EngineConfig `json:"engine" mapstructure:"engine"`

	// History
	History HistoryConfig `json:"history" mapstructure:"history"`

	// Search
	Search SearchConfig `json:"search" mapstructure:"search"`

	// Watcher
	Watcher WatcherConfig `json:"watcher" mapstructure:"watcher"`

	// Heartbeat
	Heartbeat HeartbeatConfig `json:"heartbeat" mapstructure:"heartbeat"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ModelsConfig holds model configuration
type ModelsConfig struct {
	Default string            `json:"default" mapstructure:"default"`
	Aliases map[string]string `json:"aliases" mapstructure:"aliases"`
}

// EngineConfig holds editing-engine configuration
type EngineConfig struct {
	AutoCommits  bool   `json:"auto_commits" mapstructure:"auto_commits"`
	DirtyCommits bool   `json:"dirty_commits" mapstructure:"dirty_commits"`
	EditFormat   string `json:"edit_format" mapstructure:"edit_format"` // whole
}

// HistoryConfig holds instruction history configuration
type HistoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
	MaxAge  int    `json:"max_age" mapstructure:"max_age"` // days
}

// SearchConfig holds code search configuration
type SearchConfig struct {
	Timeout int `json:"timeout" mapstructure:"timeout"` // seconds
}

// WatcherConfig holds file watcher configuration
type WatcherConfig struct {
	Enabled            bool `json:"enabled" mapstructure:"enabled"`
	StabilityThreshold int  `json:"stability_threshold" mapstructure:"stability_threshold"` // milliseconds
}

// HeartbeatConfig holds heartbeat configuration
type HeartbeatConfig struct {
	Enabled  bool `json:"enabled" mapstructure:"enabled"`
	Interval int  `json:"interval" mapstructure:"interval"` // seconds
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			Default: "gpt-4",
			Aliases: map[string]string{
				"opus":   "anthropic/claude-3-opus",
				"sonnet": "anthropic/claude-3-5-sonnet",
				"gpt4":   "openai/gpt-4",
			},
		},
		Engine: EngineConfig{
			AutoCommits:  true,
			DirtyCommits: true,
			EditFormat:   "whole",
		},
		History: HistoryConfig{
			Enabled: true,
			MaxAge:  30,
		},
		Search: SearchConfig{
			Timeout: 10,
		},
		Watcher: WatcherConfig{
			Enabled:            true,
			StabilityThreshold: 100,
		},
		Heartbeat: HeartbeatConfig{
			Enabled:  false,
			Interval: 30,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Redaction: true,
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
		},
		DataDir: "",
	}
}

// SearchTimeout returns the configured search timeout as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.Timeout) * time.Second
}

// HeartbeatInterval returns the configured heartbeat interval as a duration.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Heartbeat.Interval) * time.Second
}

// HistoryMaxAge returns the history retention window as a duration.
func (c *Config) HistoryMaxAge() time.Duration {
	return time.Duration(c.History.MaxAge) * 24 * time.Hour
}

// StabilityThreshold returns the watcher debounce window as a duration.
func (c *Config) StabilityThreshold() time.Duration {
	return time.Duration(c.Watcher.StabilityThreshold) * time.Millisecond
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Models.Default == "" {
		return fmt.Errorf("models.default is required")
	}

	if c.Engine.EditFormat != "" && c.Engine.EditFormat != "whole" {
		return fmt.Errorf("invalid edit format: %s (must be: whole)", c.Engine.EditFormat)
	}

	if c.Search.Timeout < 0 {
		return fmt.Errorf("search.timeout must not be negative")
	}

	if c.History.MaxAge < 0 {
		return fmt.Errorf("history.max_age must not be negative")
	}

	if c.Heartbeat.Enabled && c.Heartbeat.Interval <= 0 {
		return fmt.Errorf("heartbeat.interval must be positive when heartbeat is enabled")
	}

	if c.Watcher.StabilityThreshold < 0 {
		return fmt.Errorf("watcher.stability_threshold must not be negative")
	}

	level := c.Logging.Level
	if level != "" && level != "debug" && level != "info" && level != "warn" && level != "error" {
		return fmt.Errorf("invalid log level: %s", level)
	}

	return nil
}
