package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, time.Second, cfg.Sampling.Interval)
	assert.Equal(t, 2*time.Second, cfg.Sampling.Disk)
	assert.Equal(t, 60*time.Second, cfg.Retention)
	assert.Equal(t, 3600, cfg.MaxSamples)
	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, "cpu", cfg.Processes.Sort)
	assert.True(t, cfg.Processes.Descending)
	assert.Equal(t, "synthwave", cfg.Theme)
	assert.True(t, cfg.Mouse)
	assert.Len(t, cfg.Layout.Rows, 3)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".rtop.yaml")

	content := `
version: 1
sampling:
  interval: 500ms
  processes: 2s
retention: 2m
max_samples: 500
backend: PSUTIL
processes:
  sort: mem
  descending: false
  filter: python
  group: true
theme: nord
mouse: false
layout:
  rows:
    - widgets:
        - type: proc
    - ratio: 2
      widgets:
        - type: cpu
          ratio: 3
        - type: memory
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Sampling.Interval)
	assert.Equal(t, 2*time.Second, cfg.Sampling.Processes)
	assert.Equal(t, 2*time.Second, cfg.Sampling.Disk, "unset keys keep their defaults")
	assert.Equal(t, 2*time.Minute, cfg.Retention)
	assert.Equal(t, 500, cfg.MaxSamples)
	assert.Equal(t, "psutil", cfg.Backend)
	assert.Equal(t, "mem", cfg.Processes.Sort)
	assert.False(t, cfg.Processes.Descending)
	assert.Equal(t, "python", cfg.Processes.Filter)
	assert.True(t, cfg.Processes.Group)
	assert.Equal(t, "nord", cfg.Theme)
	assert.False(t, cfg.Mouse)

	require.Len(t, cfg.Layout.Rows, 2, "a file layout replaces the default")
	assert.Equal(t, "proc", cfg.Layout.Rows[0].Widgets[0].Type)
	assert.Equal(t, 2, cfg.Layout.Rows[1].Ratio)
	assert.Equal(t, 3, cfg.Layout.Rows[1].Widgets[0].Ratio)

	require.NoError(t, Validate(cfg))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sampling: [unclosed"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	wrongType := filepath.Join(t.TempDir(), "wrong.yaml")
	require.NoError(t, os.WriteFile(wrongType, []byte("sampling:\n  interval: soon\n"), 0644))
	_, err = Load(wrongType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid config format")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RTOP_SAMPLING_INTERVAL", "250ms")
	t.Setenv("RTOP_THEME", "mono")

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: nord\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Sampling.Interval)
	assert.Equal(t, "mono", cfg.Theme, "environment wins over the file")
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

		found, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("current directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		t.Setenv("HOME", t.TempDir())
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 1\n"), 0644))

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, ConfigFileName, filepath.Base(found))
	})

	t.Run("global config", func(t *testing.T) {
		t.Chdir(t.TempDir())
		home := t.TempDir()
		t.Setenv("HOME", home)
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		require.NoError(t, os.MkdirAll(filepath.Dir(global), 0755))
		require.NoError(t, os.WriteFile(global, []byte("version: 1\n"), 0644))

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, global, found)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("HOME", t.TempDir())

		found, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RTOP_MAX_SAMPLES", "42")

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, 42, cfg.MaxSamples)
	assert.Len(t, cfg.Layout.Rows, 3)
}
