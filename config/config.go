// Package config materializes typed settings from the environment. The
// library itself never reads the environment at request time; everything is
// parsed once here and handed down as plain values.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds every externally configurable knob. Credential pools are
// comma-separated lists, in rotation order.
type Settings struct {
	GeminiAPIKeys    []string `env:"GEMINI_API_KEYS" envSeparator:","`
	GeminiBaseURL    string   `env:"GEMINI_API_BASE_URL"`
	OpenAIAPIKeys    []string `env:"OPENAI_API_KEYS" envSeparator:","`
	OpenAIBaseURL    string   `env:"OPENAI_API_BASE_URL"`
	AnthropicAPIKeys []string `env:"ANTHROPIC_API_KEYS" envSeparator:","`
	AnthropicBaseURL string   `env:"ANTHROPIC_API_BASE_URL"`

	CacheDir       string        `env:"AIBRIDGE_CACHE_DIR" envDefault:".aibridge-cache"`
	CacheMemoryTTL time.Duration `env:"AIBRIDGE_CACHE_MEMORY_TTL" envDefault:"5m"`
	CacheDisabled  bool          `env:"AIBRIDGE_CACHE_DISABLED"`
}

// Load parses Settings from the process environment.
func Load() (Settings, error) {
	settings, err := env.ParseAs[Settings]()
	if err != nil {
		return Settings{}, fmt.Errorf("parsing environment: %w", err)
	}
	return settings, nil
}

// APIKeys returns the credential pool configured for providerID.
func (s Settings) APIKeys(providerID string) []string {
	switch providerID {
	case "gemini":
		return s.GeminiAPIKeys
	case "openai":
		return s.OpenAIAPIKeys
	case "anthropic":
		return s.AnthropicAPIKeys
	default:
		return nil
	}
}

// BaseURL returns the endpoint override configured for providerID, if any.
func (s Settings) BaseURL(providerID string) string {
	switch providerID {
	case "gemini":
		return s.GeminiBaseURL
	case "openai":
		return s.OpenAIBaseURL
	case "anthropic":
		return s.AnthropicBaseURL
	default:
		return ""
	}
}
