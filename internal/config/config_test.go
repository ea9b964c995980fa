package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/llm"
)

// isolate points every location and key variable at a clean state.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	for _, name := range []string{
		"STUDYDECK_DB", "STUDYDECK_LLM_PROVIDER", "STUDYDECK_GEMINI_API_KEY",
		"STUDYDECK_GEMINI_BACKUP_KEYS", "STUDYDECK_GEMINI_FALLBACK_MODELS",
		"STUDYDECK_OPENAI_API_KEY", "STUDYDECK_HTTP_TIMEOUT",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return dir
}

func command(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "studydeck"}
	RegisterFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(command(t))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "studydeck", "studydeck.db"), cfg.DBPath)
	assert.Equal(t, catalog.DefaultCourseURL, cfg.CourseURL)
	assert.Equal(t, catalog.DefaultQuestionBaseURL, cfg.QuestionBaseURL)
	assert.Equal(t, DefaultDocsAPIURL, cfg.DocsAPIURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10, cfg.PracticeDefaultCount)
	assert.Equal(t, 1500*time.Millisecond, cfg.AutosaveDelay)
	assert.False(t, cfg.Debug)

	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, llm.DefaultGeminiModels, cfg.LLM.Gemini.Models())
	assert.Equal(t, 60*time.Second, cfg.LLM.Gemini.KeyCooldown)
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYDECK_GEMINI_API_KEY", "primary")
	t.Setenv("STUDYDECK_GEMINI_BACKUP_KEYS", "b1, b2,,")
	t.Setenv("STUDYDECK_GEMINI_FALLBACK_MODELS", "m2,m3")
	t.Setenv("STUDYDECK_HTTP_TIMEOUT", "3s")

	cfg, err := Load(command(t))
	require.NoError(t, err)

	assert.Equal(t, "primary", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, []string{"b1", "b2"}, cfg.LLM.Gemini.BackupKeys)
	assert.Equal(t, []string{"gemini-2.5-flash-lite", "m2", "m3"}, cfg.LLM.Gemini.Models())
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.NoError(t, cfg.LLM.Validate())
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("STUDYDECK_DB", filepath.Join(dir, "env.db"))
	flagDB := filepath.Join(dir, "nested", "flag.db")

	cfg, err := Load(command(t, "--db", flagDB, "--debug", "--llm-provider", "mock"))
	require.NoError(t, err)

	assert.Equal(t, flagDB, cfg.DBPath)
	assert.True(t, cfg.Debug)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestLoadDiscoversVendorKey(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(command(t))
	require.NoError(t, err)

	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
}

func TestLoadExplicitProviderNotOverridden(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(command(t, "--llm-provider", "anthropic"))
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STUDYDECK_GEMINI_API_KEY=from-dotenv\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("STUDYDECK_GEMINI_API_KEY") })

	cfg, err := Load(command(t))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.LLM.Gemini.APIKey)

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestDefaultLogPath(t *testing.T) {
	dir := isolate(t)
	p, err := DefaultLogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "studydeck", "studydeck.log"), p)
}
