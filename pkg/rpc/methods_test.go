package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryConfig_ResolveModel(t *testing.T) {
	rc := RegistryConfig{
		DefaultModel: "claude-3-opus",
		ModelAliases: map[string]string{"opus": "claude-3-opus-20240229"},
	}

	assert.Equal(t, "claude-3-opus", rc.resolveModel(""))
	assert.Equal(t, "claude-3-opus-20240229", rc.resolveModel("opus"))
	assert.Equal(t, "gpt-4o", rc.resolveModel("gpt-4o"))
}

func TestRegistryConfig_ZeroValueFallsBackToHistoricalDefault(t *testing.T) {
	assert.Equal(t, "gpt-4", RegistryConfig{}.resolveModel(""))
}

func TestRegistryConfig_AliasAppliesToDefault(t *testing.T) {
	rc := RegistryConfig{
		DefaultModel: "sonnet",
		ModelAliases: map[string]string{"sonnet": "claude-3-5-sonnet"},
	}
	assert.Equal(t, "claude-3-5-sonnet", rc.resolveModel(""))
}
