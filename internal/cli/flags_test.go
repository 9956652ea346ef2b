package cli

import (
	"testing"
	"time"

	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseTestFlags builds a throwaway command carrying the dashboard flags and
// parses args into it.
func parseTestFlags(t *testing.T, args ...string) (*cobra.Command, *dashboardFlags) {
	t.Helper()
	var f dashboardFlags
	cmd := &cobra.Command{Use: "rtop"}
	cmd.Flags().StringVar(&f.Config, "config", "", "")
	cmd.Flags().BoolVar(&f.NoColor, "no-color", false, "")
	addDashboardFlags(cmd, &f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, &f
}

func TestApplyFlags_NoneSet(t *testing.T) {
	cmd, f := parseTestFlags(t)
	cfg := config.DefaultConfig()

	require.NoError(t, applyFlags(cmd, cfg, f))
	assert.Equal(t, config.DefaultConfig(), cfg, "unset flags leave the config alone")
}

func TestApplyFlags_Overrides(t *testing.T) {
	cmd, f := parseTestFlags(t,
		"--interval", "500ms",
		"--proc-interval", "2s",
		"--disk-interval", "5s",
		"--retention", "2m",
		"--max-samples", "100",
		"--backend", " PSUTIL ",
		"--sort", "mem",
		"-r",
		"--filter", "nginx",
		"--regex",
		"-g",
		"--theme", "Nord",
		"--no-mouse",
	)
	cfg := config.DefaultConfig()
	require.NoError(t, applyFlags(cmd, cfg, f))

	assert.Equal(t, 500*time.Millisecond, cfg.Sampling.Interval)
	assert.Equal(t, 2*time.Second, cfg.Sampling.Processes)
	assert.Equal(t, 5*time.Second, cfg.Sampling.Disk)
	assert.Equal(t, 2*time.Minute, cfg.Retention)
	assert.Equal(t, 100, cfg.MaxSamples)
	assert.Equal(t, "psutil", cfg.Backend)
	assert.Equal(t, "mem", cfg.Processes.Sort)
	assert.False(t, cfg.Processes.Descending, "--reverse flips the configured order")
	assert.Equal(t, "nginx", cfg.Processes.Filter)
	assert.True(t, cfg.Processes.Regex)
	assert.True(t, cfg.Processes.Group)
	assert.Equal(t, "nord", cfg.Theme)
	assert.False(t, cfg.Mouse)
	require.NoError(t, config.Validate(cfg))
}

func TestApplyFlags_ExplicitFalseOverridesConfig(t *testing.T) {
	cmd, f := parseTestFlags(t, "--group=false", "--regex=false")
	cfg := config.DefaultConfig()
	cfg.Processes.Group = true
	cfg.Processes.Regex = true

	require.NoError(t, applyFlags(cmd, cfg, f))
	assert.False(t, cfg.Processes.Group)
	assert.False(t, cfg.Processes.Regex)
}

func TestApplyFlags_NoColorForcesMono(t *testing.T) {
	cmd, f := parseTestFlags(t, "--theme", "nord", "--no-color")
	cfg := config.DefaultConfig()

	require.NoError(t, applyFlags(cmd, cfg, f))
	assert.Equal(t, "mono", cfg.Theme)
}

func TestApplyFlags_BadDuration(t *testing.T) {
	cmd, f := parseTestFlags(t, "--retention", "forever")
	cfg := config.DefaultConfig()

	err := applyFlags(cmd, cfg, f)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "--retention")
	assert.Equal(t, 60*time.Second, cfg.Retention, "config untouched on error")
}

func TestParseDurationFlag(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", value: "5s", want: 5 * time.Second},
		{name: "milliseconds", value: "250ms", want: 250 * time.Millisecond},
		{name: "compound", value: "1m30s", want: 90 * time.Second},
		{name: "surrounding space", value: " 2s ", want: 2 * time.Second},
		{name: "bare number", value: "5", wantErr: true},
		{name: "word", value: "fast", wantErr: true},
		{name: "empty", value: "", wantErr: true},
		{name: "zero", value: "0s", wantErr: true},
		{name: "negative", value: "-1s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurationFlag("interval", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
