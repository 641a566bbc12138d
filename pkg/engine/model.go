package engine

import (
	"fmt"
	"os"
	"strings"
)

// Model identifier normalization lives here, at the collaborator boundary.
// Hosts send bare identifiers ("gpt-4", "claude-3-opus") or explicitly
// prefixed ones ("anthropic/claude-3-opus"); the session passes them through
// untouched and this package decides which provider serves them.

const (
	providerAnthropic = "anthropic"
	providerOpenAI    = "openai"
)

const (
	anthropicKeyEnv = "ANTHROPIC_API_KEY"
	openAIKeyEnv    = "OPENAI_API_KEY"
)

// NormalizeModel resolves a raw model identifier to (provider, model).
// An explicit "provider/model" prefix wins; otherwise the identifier's
// family prefix decides.
func NormalizeModel(raw string) (string, string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", "", fmt.Errorf("%w: empty identifier", ErrUnknownModel)
	}

	if prov, model, ok := strings.Cut(name, "/"); ok {
		switch prov {
		case providerAnthropic, providerOpenAI:
			return prov, model, nil
		default:
			return "", "", fmt.Errorf("%w: unknown provider prefix %q", ErrUnknownModel, prov)
		}
	}

	switch {
	case strings.HasPrefix(name, "claude"):
		return providerAnthropic, name, nil
	case strings.HasPrefix(name, "gpt"),
		strings.HasPrefix(name, "o1"),
		strings.HasPrefix(name, "o3"),
		strings.HasPrefix(name, "o4"):
		return providerOpenAI, name, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownModel, raw)
	}
}

// newProvider builds the provider for a raw model identifier. The API key
// comes from apiKey when set, otherwise from the provider's conventional
// environment variable.
func newProvider(rawModel, apiKey string) (provider, string, error) {
	prov, model, err := NormalizeModel(rawModel)
	if err != nil {
		return nil, "", err
	}

	switch prov {
	case providerAnthropic:
		key := keyOrEnv(apiKey, anthropicKeyEnv)
		if key == "" {
			return nil, "", fmt.Errorf("%w: %s", ErrMissingAPIKey, anthropicKeyEnv)
		}
		return newAnthropicProvider(key), model, nil
	case providerOpenAI:
		key := keyOrEnv(apiKey, openAIKeyEnv)
		if key == "" {
			return nil, "", fmt.Errorf("%w: %s", ErrMissingAPIKey, openAIKeyEnv)
		}
		return newOpenAIProvider(key), model, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownModel, rawModel)
	}
}

func keyOrEnv(key, envName string) string {
	if key != "" {
		return key
	}
	return os.Getenv(envName)
}
