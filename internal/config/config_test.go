package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "data/ethiopia_fi_unified_data.xlsx", cfg.Paths.UnifiedFile)
	assert.NoError(t, cfg.validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
paths:
  unified_file: /data/unified.xlsx
  artifacts_dir: /tmp/artifacts
logging:
  level: debug
  output: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/data/unified.xlsx", cfg.Paths.UnifiedFile)
	assert.Equal(t, "/tmp/artifacts", cfg.Paths.ArtifactsDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched fields keep their defaults.
	assert.Equal(t, "data/reference_codes.csv", cfg.Paths.RefCodesFile)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("FIP_SERVER_PORT", "7070")
	t.Setenv("FIP_PATHS_DATA_DIR", "/srv/data")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/data", cfg.Paths.DataDir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"huge port", func(c *Config) { c.Server.Port = 70000 }},
		{"no unified file", func(c *Config) { c.Paths.UnifiedFile = "" }},
		{"bad logging output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"file output without path", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }},
		{"zero rate limit", func(c *Config) { c.HTTP.RateLimitRPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/does/not/exist/config.yaml")
	assert.Error(t, err)
}
