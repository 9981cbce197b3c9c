package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storygen-ai-api/pkg/errors"
)

const baseYAML = `
server:
  http:
    port: ${STORYGEN_TEST_PORT:8081}
groq:
  api_key: ${GROQ_API_KEY:}
  timeout: 45s
normalizer:
  window: 3
`

func writeConfigDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestLoad_FromFileAndEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	dir := writeConfigDir(t, map[string]string{"config.yaml": baseYAML})

	cfg, err := Load(WithConfigDir(dir), WithEnv("test"))
	require.NoError(t, err)

	assert.Equal(t, "gsk_from_env", cfg.Groq.APIKey)
	assert.Equal(t, 8081, cfg.Server.HTTP.Port)
	assert.Equal(t, 45*time.Second, cfg.Groq.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Groq.RateLimitBackoff)
	assert.Equal(t, 3, cfg.Normalizer.Window)
	assert.InDelta(t, 0.7, cfg.Normalizer.SimilarityThreshold, 1e-9)
	assert.Equal(t, 300, cfg.ImagePrompt.MaxLength)
	assert.Equal(t, "test", cfg.App.Env)
}

func TestLoad_EnvFileMergesOverBase(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	dir := writeConfigDir(t, map[string]string{
		"config.yaml":         baseYAML,
		"config.staging.yaml": "groq:\n  max_tokens: 512\n",
	})

	cfg, err := Load(WithConfigDir(dir), WithEnv("staging"))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Groq.MaxTokens)
	assert.Equal(t, 45*time.Second, cfg.Groq.Timeout)
}

func TestLoad_EnvironmentVariableOverridesFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	t.Setenv("GROQ_MAX_TOKENS", "256")
	dir := writeConfigDir(t, map[string]string{"config.yaml": baseYAML})

	cfg, err := Load(WithConfigDir(dir), WithEnv("test"))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Groq.MaxTokens)
}

func TestLoad_ExplicitAPIKeyWins(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	dir := writeConfigDir(t, map[string]string{"config.yaml": baseYAML})

	cfg, err := Load(WithConfigDir(dir), WithEnv("test"), WithAPIKey("gsk_explicit"))
	require.NoError(t, err)
	assert.Equal(t, "gsk_explicit", cfg.Groq.APIKey)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	dir := writeConfigDir(t, map[string]string{"config.yaml": baseYAML})

	_, err := Load(WithConfigDir(dir), WithEnv("test"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestLoad_ZeroTemperatureIsKept(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	dir := writeConfigDir(t, map[string]string{
		"config.yaml":      baseYAML,
		"config.test.yaml": "groq:\n  temperature: 0\n",
	})

	cfg, err := Load(WithConfigDir(dir), WithEnv("test"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Groq.Temperature)
}

func TestLoad_RejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{name: "zero similarity threshold", extra: "normalizer:\n  similarity_threshold: 0\n", want: "similarity_threshold"},
		{name: "threshold above one", extra: "normalizer:\n  similarity_threshold: 1.5\n", want: "similarity_threshold"},
		{name: "negative temperature", extra: "groq:\n  temperature: -0.1\n", want: "temperature"},
		{name: "zero top_p", extra: "groq:\n  top_p: 0\n", want: "top_p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GROQ_API_KEY", "gsk_from_env")
			dir := writeConfigDir(t, map[string]string{
				"config.yaml":      baseYAML,
				"config.test.yaml": tt.extra,
			})

			_, err := Load(WithConfigDir(dir), WithEnv("test"))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")

	cfg, err := Load(WithConfigDir(t.TempDir()), WithEnv("test"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Groq.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Groq.Timeout)
	assert.Equal(t, 10, cfg.Groq.ProbeMaxTokens)
	assert.True(t, cfg.Groq.SelectOnStartup)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("STORYGEN_EXPAND_SET", "value")

	assert.Equal(t, "a: value", expandEnv("a: ${STORYGEN_EXPAND_SET}"))
	assert.Equal(t, "a: value", expandEnv("a: ${STORYGEN_EXPAND_SET:other}"))
	assert.Equal(t, "a: fallback", expandEnv("a: ${STORYGEN_EXPAND_UNSET:fallback}"))
	assert.Equal(t, "a: ", expandEnv("a: ${STORYGEN_EXPAND_UNSET:}"))
	assert.Equal(t, "a: ${STORYGEN_EXPAND_UNSET}", expandEnv("a: ${STORYGEN_EXPAND_UNSET}"))
}
