package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8020, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, 720*time.Hour, cfg.RecentSearchTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.AnalyticsEnabled)
	assert.Equal(t, []string{"bestsellers", "new releases", "award winners"}, cfg.PopularSearches)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CATALOG_HTTP_PORT", "9000")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("POPULAR_SEARCHES", "staff picks,classics")
	t.Setenv("ANALYTICS_ENABLED", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "cache.internal", cfg.RedisHost)
	assert.Equal(t, []string{"staff picks", "classics"}, cfg.PopularSearches)
	assert.False(t, cfg.AnalyticsEnabled)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("CATALOG_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidRecentSearchTTL(t *testing.T) {
	t.Setenv("RECENT_SEARCH_TTL", "-1h")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recent search TTL")
}

func TestConfig_RedisAddr(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", cfg.Redis().Addr())
}
