package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathsolver/adapter"
	"github.com/njchilds90/mathsolver/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mathsolver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.True(t, cfg.Classifier.Enabled)
	assert.Equal(t, adapter.DefaultConfig(), cfg.Adapter())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_ShippedFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "configs", "mathsolver.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  addr: "127.0.0.1:9090"
  read_timeout: 2s
log:
  level: debug
graph:
  intervals: 50
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Graph.Intervals)
	assert.Equal(t, -5.0, cfg.Graph.Min)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := config.Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "server:\n  addr: \":9000\"\nclassifier:\n  enabled: true\n")
	t.Setenv(config.EnvAddr, ":7000")
	t.Setenv(config.EnvLogLevel, "warn")
	t.Setenv(config.EnvClassifierPath, "/tmp/model.json")
	t.Setenv(config.EnvClassifierEnabled, "false")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/model.json", cfg.Classifier.Path)
	assert.False(t, cfg.Classifier.Enabled)
}

func TestLoad_BadEnvBool(t *testing.T) {
	t.Setenv(config.EnvClassifierEnabled, "maybe")
	_, err := config.Load("")
	assert.ErrorContains(t, err, config.EnvClassifierEnabled)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "serverr:\n  addr: \":1\"\n",
		"bad yaml":        "server: [",
		"bad level":       "log:\n  level: loud\n",
		"bad encoding":    "log:\n  encoding: xml\n",
		"bad addr":        "server:\n  addr: \"localhost\"\n",
		"graph window":    "graph:\n  min: 3\n  max: 1\n",
		"zero intervals":  "graph:\n  intervals: 0\n",
		"zero timeout":    "server:\n  read_timeout: 0s\n",
		"bad origin":      "server:\n  allowed_origins: [\"not a url\"]\n",
		"missing model":   "classifier:\n  enabled: true\n  path: \"\"\n",
		"negative search": "solve:\n  search_range: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_DisabledClassifierNeedsNoPath(t *testing.T) {
	_, err := config.Load(writeFile(t, "classifier:\n  enabled: false\n  path: \"\"\n"))
	assert.NoError(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
