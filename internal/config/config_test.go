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
	assert.Equal(t, "policyhub.db", cfg.DB)
	assert.Equal(t, "site/data", cfg.OutDir)
	assert.Equal(t, "data/measures_overview", cfg.Sources.MeasuresDir)
	assert.Equal(t, "data/ccyb", cfg.Sources.CCyBDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db: /tmp/test.db
sources:
  measures_dir: /srv/measures
logging:
  level: debug
  development: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.DB)
	assert.Equal(t, "/srv/measures", cfg.Sources.MeasuresDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	// Unset fields fall back to defaults.
	assert.Equal(t, "site/data", cfg.OutDir)
	assert.Equal(t, "data/ccyb", cfg.Sources.CCyBDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
