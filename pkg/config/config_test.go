package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := FromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "gradebook", cfg.Database.Name)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.SnapshotTTL)
	assert.Equal(t, 24*time.Hour, cfg.Reports.SignedURLTTL)
	assert.Equal(t, "Grades Report", cfg.Reports.Title)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SNAPSHOT_CACHE_TTL", "not-a-duration")
	t.Setenv("REPORTS_CLEANUP_INTERVAL", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Cache.SnapshotTTL)
	assert.Equal(t, 15*time.Minute, cfg.Reports.CleanupInterval)
}
