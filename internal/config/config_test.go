package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Addr)
	assert.Equal(t, "", cfg.Server.BasePath)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestFromYAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := FromYAML([]byte("store:\n  driver: sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Addr)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"bad driver":       "store:\n  driver: postgres\n",
		"bad level":        "log:\n  level: loud\n",
		"bad format":       "log:\n  format: xml\n",
		"bad addr":         "server:\n  addr: nope\n",
		"zero timeout":     "server:\n  shutdown_timeout: 0s\n",
		"relative base":    "server:\n  base_path: api\n",
		"trailing slash":   "server:\n  base_path: /api/\n",
		"not a duration":   "server:\n  shutdown_timeout: soon\n",
		"wrong value type": "store: [1, 2]\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromYAML([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestValidateNamesField(t *testing.T) {
	_, err := FromYAML([]byte("store:\n  driver: postgres\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.store.driver")
}

func TestLoadOptionalMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Server.BasePath = "/api"
	out, err := cfg.YAML()
	require.NoError(t, err)
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
