package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("VF_DATA_DIR", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "file", cfg.Storage.Backend)
	require.Equal(t, DefaultChainCron, cfg.Chain.Cron)
	require.Equal(t, DefaultAddr, cfg.Dashboard.Addr)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  backend: sqlite\n  data_dir: " + dir + "\nchain:\n  cron: \"*/5 * * * *\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("VF_STORE", "pebble")
	t.Setenv("VF_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "pebble", cfg.Storage.Backend)
	require.Equal(t, dir, cfg.Storage.DataDir)
	require.Equal(t, "*/5 * * * *", cfg.Chain.Cron)
	require.Equal(t, ":9999", cfg.Dashboard.Addr)
	require.Equal(t, DefaultBurst, cfg.Dashboard.RateLimit.Burst)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "mongo"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Chain.Cron = "every minute"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Dashboard.RateLimit.Burst = 0
	require.Error(t, cfg.Validate())

	require.NoError(t, Default().Validate())
}

func TestWriteDefaultIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	wrote, err := WriteDefault(path)
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = WriteDefault(path)
	require.NoError(t, err)
	require.False(t, wrote)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5.0, cfg.Dashboard.RateLimit.RPS)
}
