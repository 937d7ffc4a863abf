package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MINDMAP_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 250.0, cfg.Layout.HorizontalSpacing)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, filepath.Join(cfg.DataDir, "mindmap.db"), cfg.DBPath())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
log_level: warn
data_dir: /srv/mindmap
backup_schedule: "@daily"
layout:
  level_spacing: 240
`), 0o644))

	t.Setenv("MINDMAP_CONFIG", path)
	t.Setenv("MINDMAP_LOG_LEVEL", "DEBUG")
	t.Setenv("MINDMAP_DATA_DIR", filepath.Join(dir, "data"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "@daily", cfg.BackupSchedule)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	assert.Equal(t, 240.0, cfg.Layout.LevelSpacing)
	assert.Equal(t, 250.0, cfg.Layout.HorizontalSpacing, "unset layout fields keep defaults")
}

func TestLoad_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colour: blue\n"), 0o644))
	t.Setenv("MINDMAP_CONFIG", path)

	_, err := Load()
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad driver", func(c *Config) { c.DBDriver = "oracle" }, "dbdriver must be one of"},
		{"postgres without dsn", func(c *Config) { c.DBDriver = "postgres" }, "db_dsn is required"},
		{"postgres with dsn", func(c *Config) { c.DBDriver = "postgres"; c.DBDSN = "postgres://x" }, ""},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "loglevel must be one of"},
		{"no data dir", func(c *Config) { c.DataDir = "" }, "datadir is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1), "debug disabled at warn")

	cfg.Environment = "production"
	logger, err = NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
