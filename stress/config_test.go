package stress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.True(t, cfg.Verify)
	require.Equal(t, 0.5, cfg.RemoveRatio)
}

func TestConfigValidate(t *testing.T) {
	testcases := []struct {
		name   string
		modify func(cfg *Config)
		errMsg string
	}{
		{"workers", func(cfg *Config) { cfg.Workers = 0 }, "workers must be positive"},
		{"workloads", func(cfg *Config) { cfg.Workloads = -1 }, "workloads must be positive"},
		{"keys", func(cfg *Config) { cfg.Keys = 0 }, "keys must be positive"},
		{"ratio below", func(cfg *Config) { cfg.RemoveRatio = -0.1 }, "remove ratio"},
		{"ratio above", func(cfg *Config) { cfg.RemoveRatio = 1.5 }, "remove ratio"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			cfg := DefaultConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			require.Error(tt, err)
			require.Contains(tt, err.Error(), tc.errMsg)
		})
	}

	var nilCfg *Config
	require.Error(t, nilCfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stress.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\nkeys: 128\nseed: 42\ndesc: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, 128, cfg.Keys)
	require.Equal(t, uint64(42), cfg.Seed)
	require.True(t, cfg.Desc)
	// Untouched fields keep the defaults.
	require.Equal(t, DefaultConfig().Workloads, cfg.Workloads)
	require.True(t, cfg.Verify)

	_, err = LoadConfig(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "read config")

	require.NoError(t, os.WriteFile(path, []byte("workers: [1\n"), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")

	require.NoError(t, os.WriteFile(path, []byte("removeRatio: 2\n"), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "remove ratio")
}
