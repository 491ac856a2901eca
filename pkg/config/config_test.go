package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RecommendationDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Recommendation.DefaultLimit)
	assert.Equal(t, 20, cfg.Recommendation.MaxLimit)
	assert.Equal(t, 10.0, cfg.Recommendation.DefaultMaxDistanceKm)
	assert.Equal(t, 100.0, cfg.Recommendation.MaxDistanceCapKm)
	assert.Equal(t, 4, cfg.Recommendation.Workers)
	assert.Equal(t, "UTC", cfg.Recommendation.Timezone)
	assert.True(t, cfg.Recommendation.HolidaysEnabled)
}

func TestLoad_RecommendationOverrides(t *testing.T) {
	t.Setenv("RECOMMENDATION_DEFAULT_LIMIT", "3")
	t.Setenv("RECOMMENDATION_MAX_LIMIT", "10")
	t.Setenv("RECOMMENDATION_DEFAULT_MAX_DISTANCE_KM", "7.5")
	t.Setenv("RECOMMENDATION_TIMEZONE", "Asia/Seoul")
	t.Setenv("RECOMMENDATION_HOLIDAYS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Recommendation.DefaultLimit)
	assert.Equal(t, 10, cfg.Recommendation.MaxLimit)
	assert.Equal(t, 7.5, cfg.Recommendation.DefaultMaxDistanceKm)
	assert.Equal(t, "Asia/Seoul", cfg.Recommendation.Timezone)
	assert.False(t, cfg.Recommendation.HolidaysEnabled)
}

func TestLoad_RejectsDefaultAboveMax(t *testing.T) {
	t.Setenv("RECOMMENDATION_DEFAULT_LIMIT", "30")
	t.Setenv("RECOMMENDATION_MAX_LIMIT", "20")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RECOMMENDATION_WORKERS", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Recommendation.Workers)
}

func TestLoad_TypesenseConfig(t *testing.T) {
	t.Setenv("TYPESENSE_URL", "http://test-typesense:8108")
	t.Setenv("TYPESENSE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://test-typesense:8108", cfg.Typesense.URL)
	assert.Equal(t, "test-key", cfg.Typesense.APIKey)
	assert.False(t, cfg.Typesense.Enabled)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)

	t.Setenv("ALLOWED_ORIGINS", "https://app.example.org, https://admin.example.org,")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.org", "https://admin.example.org"}, cfg.Server.AllowedOrigins)
}
