package cli

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/monitor"
	"github.com/rileyhilliard/rtop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfig runs the test from an empty directory with an empty home so
// no real config file is picked up.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "rtop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDashboardOptions_Defaults(t *testing.T) {
	opts, err := dashboardOptions(config.DefaultConfig(), logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, time.Second, opts.Intervals.Base)
	assert.Equal(t, 2*time.Second, opts.Intervals.Disk)
	assert.Equal(t, 60*time.Second, opts.Retention)
	assert.Equal(t, 3600, opts.MaxSamples)
	assert.Equal(t, store.DefaultView(), opts.View)
	assert.Same(t, monitor.Synthwave, opts.Theme)
	assert.Equal(t, 5*time.Second, opts.Redraw)
	assert.True(t, opts.Mouse)

	require.NotNil(t, opts.Layout)
	assert.Equal(t,
		layout.Compute(monitor.DefaultLayout(), 100, 40).IDs(),
		layout.Compute(opts.Layout, 100, 40).IDs())
}

func TestDashboardOptions_Custom(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sampling.Processes = 3 * time.Second
	cfg.Processes = config.ProcessConfig{Sort: "name", Filter: "^ng", Regex: true, Group: true}
	cfg.Theme = "mono"
	cfg.Layout = config.LayoutConfig{Rows: []config.RowConfig{
		{Widgets: []config.WidgetConfig{{Type: "cpu"}, {Type: "proc"}}},
	}}

	opts, err := dashboardOptions(cfg, logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, opts.Intervals.Processes)
	assert.Equal(t, store.View{Sort: store.ColumnName, Filter: "^ng", Regex: true, Group: true}, opts.View)
	assert.Same(t, monitor.Mono, opts.Theme)
	assert.Equal(t, []layout.WidgetID{monitor.WidgetCPU, monitor.WidgetProc}, layout.Compute(opts.Layout, 80, 24).IDs())
}

func TestLoadConfig(t *testing.T) {
	dir := isolateConfig(t)

	t.Run("defaults without a file", func(t *testing.T) {
		cmd, f := parseTestFlags(t)
		cfg, path, err := loadConfig(cmd, f)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, "synthwave", cfg.Theme)
	})

	t.Run("flags override the file", func(t *testing.T) {
		path := writeConfig(t, dir, "theme: nord\nsampling:\n  interval: 2s\n")
		cmd, f := parseTestFlags(t, "--config", path, "--interval", "500ms")
		cfg, got, err := loadConfig(cmd, f)
		require.NoError(t, err)
		assert.Equal(t, path, got)
		assert.Equal(t, "nord", cfg.Theme)
		assert.Equal(t, 500*time.Millisecond, cfg.Sampling.Interval)
	})

	t.Run("invalid result is rejected", func(t *testing.T) {
		cmd, f := parseTestFlags(t, "--theme", "solarized")
		_, _, err := loadConfig(cmd, f)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
		assert.Contains(t, err.Error(), "solarized")
	})

	t.Run("missing explicit file", func(t *testing.T) {
		cmd, f := parseTestFlags(t, "--config", filepath.Join(dir, "nope.yaml"))
		_, _, err := loadConfig(cmd, f)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("")
	})
	t.Setenv(logger.DebugEnv, "")

	t.Run("discarded by default", func(t *testing.T) {
		closeLog, err := setupLogging("")
		require.NoError(t, err)
		closeLog()
	})

	t.Run("log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rtop.log")
		closeLog, err := setupLogging(path)
		require.NoError(t, err)
		log.Print("sampler started")
		closeLog()
		log.SetOutput(os.Stderr)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "rtop")
		assert.Contains(t, string(data), "sampler started")
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, err := setupLogging(filepath.Join(t.TempDir(), "missing", "rtop.log"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})
}

func TestRunDashboard_RequiresTerminal(t *testing.T) {
	isolateConfig(t)
	if isTerminal() {
		t.Skip("stdout is a terminal")
	}

	cmd, f := parseTestFlags(t)
	err := runDashboard(cmd, f)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrStartup))
}
