package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_DefaultsWithoutFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := NewLoader().WithEnvFile("").Load()
	require.NoError(t, err)

	assert.Equal(t, 5100, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)
	assert.Equal(t, 60*time.Second, cfg.Cache.PriceTTL)
	assert.Equal(t, 12*time.Hour, cfg.Cache.HistoryTTL)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "Yahoo Finance", cfg.API.SourceName)
	assert.Equal(t, "memory", cfg.Snapshot.Backend)
}

func TestLoader_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
cache:
  history_ttl: 6h
upstream:
  provider: mock
  pacing_delay: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := NewLoader().WithEnvFile("").WithConfigFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 6*time.Hour, cfg.Cache.HistoryTTL)
	assert.Equal(t, "mock", cfg.Upstream.Provider)
	assert.Equal(t, 250*time.Millisecond, cfg.Upstream.PacingDelay)
	// No tocados conservan el default
	assert.Equal(t, 60*time.Second, cfg.Cache.PriceTTL)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "7000")
	t.Setenv("MARKET_DATA_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("MARKET_DATA_CACHE_PRICE_TTL", "30s")
	t.Setenv("PROXY_HOST", "proxy.internal")
	t.Setenv("PROXY_PORT", "3128")
	t.Setenv("MOCK_MODE", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := NewLoader().WithEnvFile("").Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Cache.PriceTTL)
	assert.Equal(t, "proxy.internal", cfg.Upstream.Proxy.Host)
	assert.Equal(t, 3128, cfg.Upstream.Proxy.Port)
	assert.True(t, cfg.Development.MockMode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoader_PrefixedNameWinsOverLegacy(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "7000")
	t.Setenv("MARKET_DATA_SERVER_PORT", "7100")

	cfg, err := NewLoader().WithEnvFile("").Load()
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Server.Port)
}

func TestLoader_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("MARKET_DATA_API_MAX_SYMBOLS_PER_REQUEST=12\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("MARKET_DATA_API_MAX_SYMBOLS_PER_REQUEST") })

	cfg, err := NewLoader().WithEnvFile(envPath).Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.API.MaxSymbolsPerRequest)
}

func TestLoader_MissingDotEnvIsIgnored(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := NewLoader().WithEnvFile("does-not-exist.env").Load()
	assert.NoError(t, err)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "development", GetEnvironment())

	t.Setenv("ENVIRONMENT", "Production")
	assert.Equal(t, "production", GetEnvironment())

	t.Setenv("ENV", "staging")
	assert.Equal(t, "staging", GetEnvironment())
}
