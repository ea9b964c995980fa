// Package config resolves studydeck settings from defaults, a .env file,
// STUDYDECK_* environment variables and command-line flags, in increasing
// priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/llm"
	"github.com/studydeck/studydeck/internal/store"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "STUDYDECK"

// Keys.
const (
	KeyDB                   = "db"
	KeyLogFile              = "log_file"
	KeyDebug                = "debug"
	KeyCourseAPIURL         = "course_api_url"
	KeyQuestionBaseURL      = "question_base_url"
	KeyDocsAPIURL           = "docs_api_url"
	KeyDocsAPIKey           = "docs_api_key"
	KeyShareBaseURL         = "share_base_url"
	KeyHTTPTimeout          = "http_timeout"
	KeyPracticeDefaultCount = "practice_default_count"
	KeyAutosaveDelay        = "autosave_delay"
	KeyLLMProvider          = "llm_provider"
	KeyGeminiAPIKey         = "gemini_api_key"
	KeyGeminiBackupKeys     = "gemini_backup_keys"
	KeyGeminiModel          = "gemini_model"
	KeyGeminiFallbacks      = "gemini_fallback_models"
	KeyOpenAIAPIKey         = "openai_api_key"
	KeyOpenAIModel          = "openai_model"
	KeyAnthropicAPIKey      = "anthropic_api_key"
	KeyAnthropicModel       = "anthropic_model"
	KeyOpenRouterAPIKey     = "openrouter_api_key"
	KeyOpenRouterModel      = "openrouter_model"
	KeyKeyCooldown          = "key_cooldown"
)

// Defaults that are not owned by another package.
const (
	DefaultDocsAPIURL    = "http://3docorp.id.vn/save_docs.php"
	DefaultShareBaseURL  = "https://3docorp.id.vn/docs"
	DefaultHTTPTimeout   = 10 * time.Second
	DefaultPracticeCount = 10
	DefaultAutosaveDelay = 1500 * time.Millisecond
)

// Config is the resolved application configuration.
type Config struct {
	DBPath  string
	LogFile string
	Debug   bool

	CourseURL       string
	QuestionBaseURL string
	HTTPTimeout     time.Duration

	DocsAPIURL   string
	DocsAPIKey   string
	ShareBaseURL string

	PracticeDefaultCount int
	AutosaveDelay        time.Duration

	LLM llm.Config
}

// RegisterFlags adds the persistent flags every command understands.
func RegisterFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("db", "", "Path to SQLite database file (overrides STUDYDECK_DB)")
	f.String("log-file", "", "Write logs to this file instead of the state directory")
	f.Bool("debug", false, "Enable debug logging")
	f.String("llm-provider", "", "LLM provider: gemini, openai, anthropic, openrouter, mock")
}

var flagKeys = map[string]string{
	"db":           KeyDB,
	"log-file":     KeyLogFile,
	"debug":        KeyDebug,
	"llm-provider": KeyLLMProvider,
}

var vendorKeyEnv = map[string]string{
	KeyGeminiAPIKey:     "GEMINI_API_KEY",
	KeyOpenAIAPIKey:     "OPENAI_API_KEY",
	KeyAnthropicAPIKey:  "ANTHROPIC_API_KEY",
	KeyOpenRouterAPIKey: "OPENROUTER_API_KEY",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Provider keys also accept the vendors' own variable names.
	for key, vendor := range vendorKeyEnv {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), vendor)
	}

	def := llm.DefaultConfig()
	v.SetDefault(KeyCourseAPIURL, catalog.DefaultCourseURL)
	v.SetDefault(KeyQuestionBaseURL, catalog.DefaultQuestionBaseURL)
	v.SetDefault(KeyDocsAPIURL, DefaultDocsAPIURL)
	v.SetDefault(KeyShareBaseURL, DefaultShareBaseURL)
	v.SetDefault(KeyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(KeyPracticeDefaultCount, DefaultPracticeCount)
	v.SetDefault(KeyAutosaveDelay, DefaultAutosaveDelay)
	v.SetDefault(KeyLLMProvider, def.Provider)
	v.SetDefault(KeyGeminiModel, def.Gemini.Model)
	v.SetDefault(KeyGeminiFallbacks, def.Gemini.FallbackModels)
	v.SetDefault(KeyOpenAIModel, def.OpenAI.Model)
	v.SetDefault(KeyAnthropicModel, def.Anthropic.Model)
	v.SetDefault(KeyOpenRouterModel, def.OpenRouter.Model)
	v.SetDefault(KeyKeyCooldown, def.Gemini.KeyCooldown)
	return v
}

// LoadDotEnv reads path (".env" when empty) into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration for cmd. The .env file must already have
// been loaded into the environment.
func Load(cmd *cobra.Command) (Config, error) {
	v := newViper()
	if cmd != nil {
		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	cfg := Config{
		LogFile:              v.GetString(KeyLogFile),
		Debug:                v.GetBool(KeyDebug),
		CourseURL:            v.GetString(KeyCourseAPIURL),
		QuestionBaseURL:      v.GetString(KeyQuestionBaseURL),
		HTTPTimeout:          v.GetDuration(KeyHTTPTimeout),
		DocsAPIURL:           v.GetString(KeyDocsAPIURL),
		DocsAPIKey:           v.GetString(KeyDocsAPIKey),
		ShareBaseURL:         v.GetString(KeyShareBaseURL),
		PracticeDefaultCount: v.GetInt(KeyPracticeDefaultCount),
		AutosaveDelay:        v.GetDuration(KeyAutosaveDelay),
		LLM:                  llmConfig(v),
	}
	if !providerChosen(cmd) && cfg.LLM.Validate() != nil {
		if found, ok := llm.DiscoverConfig(); ok {
			cfg.LLM.Provider = found.Provider
		}
	}

	dbPath, err := resolveDBPath(v.GetString(KeyDB))
	if err != nil {
		return Config{}, err
	}
	cfg.DBPath = dbPath

	if cfg.PracticeDefaultCount < 1 {
		return Config{}, fmt.Errorf("%s must be at least 1, got %d", KeyPracticeDefaultCount, cfg.PracticeDefaultCount)
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = DefaultAutosaveDelay
	}
	return cfg, nil
}

func llmConfig(v *viper.Viper) llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Provider = strings.ToLower(v.GetString(KeyLLMProvider))

	cfg.Gemini.APIKey = v.GetString(KeyGeminiAPIKey)
	cfg.Gemini.BackupKeys = splitList(v.GetString(KeyGeminiBackupKeys))
	cfg.Gemini.Model = v.GetString(KeyGeminiModel)
	cfg.Gemini.FallbackModels = stringList(v, KeyGeminiFallbacks)
	cfg.Gemini.KeyCooldown = v.GetDuration(KeyKeyCooldown)

	cfg.OpenAI.APIKey = v.GetString(KeyOpenAIAPIKey)
	cfg.OpenAI.Model = v.GetString(KeyOpenAIModel)
	cfg.Anthropic.APIKey = v.GetString(KeyAnthropicAPIKey)
	cfg.Anthropic.Model = v.GetString(KeyAnthropicModel)
	cfg.OpenRouter.APIKey = v.GetString(KeyOpenRouterAPIKey)
	cfg.OpenRouter.Model = v.GetString(KeyOpenRouterModel)
	return cfg
}

// providerChosen reports whether the user picked an LLM provider
// explicitly, by flag or environment.
func providerChosen(cmd *cobra.Command) bool {
	if _, ok := os.LookupEnv(EnvPrefix + "_LLM_PROVIDER"); ok {
		return true
	}
	if cmd == nil {
		return false
	}
	f := cmd.Flags().Lookup("llm-provider")
	return f != nil && f.Changed
}

// stringList reads a list that may come from a default slice or a comma
// separated environment variable.
func stringList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return splitList(s)
	}
	return v.GetStringSlice(key)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolveDBPath keeps the priority --db / STUDYDECK_DB first, then the XDG
// data directory.
func resolveDBPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, store.EnsureDir(explicit)
	}
	return store.DefaultDBPath()
}

// DefaultLogPath returns $XDG_STATE_HOME/studydeck/studydeck.log, falling
// back to ~/.local/state.
func DefaultLogPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "studydeck", "studydeck.log"), nil
}
