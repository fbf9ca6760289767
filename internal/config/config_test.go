package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 300*time.Millisecond, cfg.GetSearchDebounce())
	assert.Equal(t, 30*time.Second, cfg.Data.GetTimeout())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
data:
  base_url: https://example.com/data
database:
  type: both
  postgres:
    host: pg
search:
  meilisearch:
    host: http://meili:7700
scheduler:
  enabled: true
  daily_run_time: "03:30"
rate_limit:
  requests_per_minute: 5
search_debounce_ms: 150
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://example.com/data", cfg.Data.BaseURL)
	assert.Equal(t, "manifest.json", cfg.Data.Manifest, "untouched keys keep defaults")
	assert.True(t, cfg.Database.UsesMySQL())
	assert.True(t, cfg.Database.UsesPostgres())
	assert.Equal(t, "pg", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "trades", cfg.Search.Meilisearch.Index)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "03:30", cfg.Scheduler.DailyRunTime)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 20000, cfg.RateLimit.RequestsPerHour)
	assert.Equal(t, 150*time.Millisecond, cfg.GetSearchDebounce())
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
