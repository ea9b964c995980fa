package llm

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the chat model.
type Config struct {
	Provider string

	Gemini     GeminiConfig
	OpenAI     Endpoint
	Anthropic  Endpoint
	OpenRouter Endpoint
	Retry      RetryPolicy
}

// Endpoint is a single-key vendor. BaseURL is only honored by the
// OpenAI-compatible providers.
type Endpoint struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiConfig is the Gemini setup: a primary key with backups, and a
// model with fallbacks.
type GeminiConfig struct {
	APIKey         string
	BackupKeys     []string
	Model          string
	FallbackModels []string
	// KeyCooldown is how long a rate-limited key sits out.
	KeyCooldown time.Duration
}

// Models is Model then FallbackModels, blanks and repeats removed.
func (g GeminiConfig) Models() []string {
	var out []string
	for _, m := range append([]string{g.Model}, g.FallbackModels...) {
		if m = strings.TrimSpace(m); m != "" && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// DefaultGeminiModels is the fallback order used when none is configured.
var DefaultGeminiModels = []string{
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
	"gemini-2.5-flash",
	"gemma-3n-e4b-it",
}

// DefaultConfig is Gemini with the default model chain.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Gemini: GeminiConfig{
			Model:          DefaultGeminiModels[0],
			FallbackModels: slices.Clone(DefaultGeminiModels[1:]),
			KeyCooldown:    time.Minute,
		},
		OpenAI:     Endpoint{Model: "gpt-4o-mini"},
		Anthropic:  Endpoint{Model: "claude-haiku"},
		OpenRouter: Endpoint{Model: "google/gemini-2.0-flash-001", BaseURL: openRouterBaseURL},
		Retry:      DefaultRetryPolicy(),
	}
}

// vendorEnv is the order DiscoverConfig checks the vendors' own variables.
var vendorEnv = []struct {
	provider string
	env      string
}{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// DiscoverConfig returns the default config switched to the first vendor
// whose own API key variable is set.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendorEnv {
		key := os.Getenv(v.env)
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = v.provider
		cfg.setKey(key)
		return cfg, true
	}
	return Config{}, false
}

func (c *Config) setKey(key string) {
	switch c.Provider {
	case ProviderGemini:
		c.Gemini.APIKey = key
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = key
	}
}

// Validate reports a missing API key for the selected provider.
func (c Config) Validate() error {
	var hasKey bool
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderGemini:
		hasKey = c.Gemini.APIKey != "" || len(c.Gemini.BackupKeys) > 0
	case ProviderOpenAI:
		hasKey = c.OpenAI.APIKey != ""
	case ProviderAnthropic:
		hasKey = c.Anthropic.APIKey != ""
	case ProviderOpenRouter:
		hasKey = c.OpenRouter.APIKey != ""
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if !hasKey {
		return fmt.Errorf("no API key for the %s provider: set STUDYDECK_%s_API_KEY", c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}
