package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_SERVER_ADDR", "APP_LOG_LEVEL", "APP_ENGINE", "OPENAI_API_KEY",
		"APP_REDIS_ADDR", "APP_CACHE_TTL", "APP_RATE_LIMIT", "APP_CORS_ORIGINS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, ":8000", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, engineStub, cfg.Engine)
	require.Equal(t, 24*time.Hour, cfg.CacheTTL)
	require.Equal(t, 120, cfg.RateLimit)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Empty(t, cfg.RedisAddr)
}

func TestLoadConfigHonorsEnv(t *testing.T) {
	t.Setenv("APP_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("APP_CACHE_TTL", "5m")
	t.Setenv("APP_CORS_ORIGINS", "http://localhost:3000,https://app.example.com")
	t.Setenv("APP_ENGINE", "stub")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.Addr)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfigFromDotEnv(t *testing.T) {
	t.Setenv("APP_RATE_LIMIT", "")
	require.NoError(t, os.Unsetenv("APP_RATE_LIMIT"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_RATE_LIMIT=7\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("APP_RATE_LIMIT") })

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.RateLimit)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, config{Engine: "stub"}.validate())
	require.NoError(t, config{Engine: "openai", OpenAIKey: "sk-test"}.validate())
	require.Error(t, config{Engine: "openai"}.validate())
	require.Error(t, config{Engine: "deepl"}.validate())
	require.Error(t, config{Engine: "stub", RateLimit: -1}.validate())
}

func TestNewTranslator(t *testing.T) {
	t.Parallel()

	translator, err := newTranslator(config{Engine: engineOpenAI, OpenAIKey: "sk-test", OpenAIModel: "gpt-4o-mini"})
	require.NoError(t, err)
	require.True(t, translator.Health().Healthy)

	translator, err = newTranslator(config{Engine: engineStub})
	require.NoError(t, err)
	require.Equal(t, "stub translator ready", translator.Health().Message)
}
