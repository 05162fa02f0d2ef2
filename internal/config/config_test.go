package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPartialFile(t *testing.T) {
	path := writeConfig(t, `
tracker {
  player     = "0xferr"
  import_dir = "/data/888"
}

log {
  level = "debug"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0xferr", cfg.Tracker.Player)
	assert.Equal(t, "/data/888", cfg.Tracker.ImportDir)
	assert.Equal(t, "Asia/Tbilisi", cfg.Tracker.Timezone)
	assert.Equal(t, 4, cfg.Tracker.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "raketracker.db", cfg.Database.Path)
	assert.Equal(t, 72, cfg.Chart.Width)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadHCL(t *testing.T) {
	_, err := Load(writeConfig(t, `tracker { player = `))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `tracker { colour = "blue" }`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"timezone", func(c *Config) { c.Tracker.Timezone = "Mars/Olympus" }},
		{"workers", func(c *Config) { c.Tracker.Workers = -1 }},
		{"database", func(c *Config) { c.Database.Path = "" }},
		{"chart", func(c *Config) { c.Chart.Width = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tbilisi", loc.String())
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Tracker.Player = "0xferr"
	cfg.Tracker.ImportDir = "/data/888"
	cfg.Log.File = "raketracker.log"

	path := filepath.Join(t.TempDir(), "conf", DefaultFile)
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tracker {")
	assert.Contains(t, string(data), `"0xferr"`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
