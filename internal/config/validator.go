package config

import (
	"fmt"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAPIKey validates an API key format
func (v *Validator) ValidateAPIKey(key string, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}

// ValidateModel validates a model name
func (v *Validator) ValidateModel(model string) error {
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	return nil
}

// ValidateEditFormat validates an edit format name
func (v *Validator) ValidateEditFormat(format string) error {
	if format == "" {
		return nil // Use default
	}

	validFormats := []string{"whole"}
	for _, valid := range validFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid edit format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateModel(cfg.Models.Default); err != nil {
		errors = append(errors, fmt.Errorf("models.default: %w", err))
	}
	for alias, full := range cfg.Models.Aliases {
		if full == "" {
			errors = append(errors, fmt.Errorf("model alias %s maps to an empty name", alias))
		}
	}

	if err := v.ValidateEditFormat(cfg.Engine.EditFormat); err != nil {
		errors = append(errors, err)
	}

	if cfg.Search.Timeout < 0 {
		errors = append(errors, fmt.Errorf("search.timeout must be >= 0"))
	}
	if cfg.History.MaxAge < 0 {
		errors = append(errors, fmt.Errorf("history.max_age must be >= 0"))
	}
	if cfg.Heartbeat.Enabled && cfg.Heartbeat.Interval <= 0 {
		errors = append(errors, fmt.Errorf("heartbeat.interval must be > 0 when enabled"))
	}
	if cfg.Watcher.StabilityThreshold < 0 {
		errors = append(errors, fmt.Errorf("watcher.stability_threshold must be >= 0"))
	}

	// Validate logging
	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
