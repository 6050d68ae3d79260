package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Logging.Development)
	assert.Contains(t, cfg.Scraper.UserAgent, "marquee-bot")
	assert.Contains(t, cfg.Scraper.UserAgent, "+https://", "user agent must carry contact info")
	assert.Equal(t, 2*time.Second, cfg.RequestDelay())
	assert.Equal(t, 3, cfg.Scraper.MaxAttempts)
	assert.Equal(t, time.Second, cfg.BackoffBase())
	assert.Equal(t, 30*time.Second, cfg.NavTimeout())
	assert.Equal(t, 15*time.Second, cfg.StaticTimeout())
	assert.Equal(t, 9090, cfg.Admin.Port)
	assert.Equal(t, 6*time.Hour, cfg.ScrapeInterval())
	assert.Empty(t, cfg.Venues)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
scraper:
  request_delay_ms: 500
  max_attempts: 5
venues:
  - id: rickshaw
    name: Rickshaw Theatre
    url: https://rickshawtheatre.com/events
    enabled: true
  - id: pearl
    name: The Pearl
    url: https://thepearlvancouver.com/shows
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.RequestDelay())
	assert.Equal(t, 5, cfg.Scraper.MaxAttempts)
	require.Len(t, cfg.Venues, 2)
	assert.Equal(t, "rickshaw", cfg.Venues[0].ID)
	assert.True(t, cfg.Venues[0].Enabled)
	assert.False(t, cfg.Venues[1].Enabled)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		yaml string
	}{
		{name: "zero attempts", yaml: "scraper:\n  max_attempts: 0\n"},
		{name: "zero interval", yaml: "schedule:\n  interval_minutes: 0\n"},
		{name: "venue missing url", yaml: "venues:\n  - id: rickshaw\n"},
		{name: "duplicate venue id", yaml: "venues:\n  - id: a\n    url: https://a\n  - id: a\n    url: https://b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
