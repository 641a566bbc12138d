package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAPIKey(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		key      string
		provider string
		wantErr  bool
	}{
		{"valid anthropic key", "sk-ant-api03-xxxx", "anthropic", false},
		{"valid openai key", "sk-xxxx", "openai", false},
		{"empty key", "", "anthropic", true},
		{"wrong anthropic prefix", "sk-xxxx", "anthropic", true},
		{"wrong openai prefix", "key-xxxx", "openai", true},
		{"unknown provider passes format check", "anything", "gemini", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAPIKey(tt.key, tt.provider)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateModel(t *testing.T) {
	v := NewValidator()

	assert.Error(t, v.ValidateModel(""))
	assert.NoError(t, v.ValidateModel("gpt-4"))
	assert.NoError(t, v.ValidateModel("anthropic/claude-3-opus"))
}

func TestValidateEditFormat(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateEditFormat(""))
	assert.NoError(t, v.ValidateEditFormat("whole"))
	assert.Error(t, v.ValidateEditFormat("udiff"))
}

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.NoError(t, v.ValidateLogLevel(level))
	}
	assert.Error(t, v.ValidateLogLevel("trace"))
	assert.Error(t, v.ValidateLogLevel(""))
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	t.Run("default config has no errors", func(t *testing.T) {
		assert.Empty(t, v.ValidateConfig(DefaultConfig()))
	})

	t.Run("collects all errors", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Models.Default = ""
		cfg.Models.Aliases = map[string]string{"broken": ""}
		cfg.Engine.EditFormat = "udiff"
		cfg.Search.Timeout = -1
		cfg.Logging.Level = "trace"

		errs := v.ValidateConfig(cfg)
		assert.Len(t, errs, 5)
	})
}
