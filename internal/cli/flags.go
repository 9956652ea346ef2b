package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/harvest/platform"
	"github.com/rileyhilliard/rtop/internal/monitor"
	"github.com/spf13/cobra"
)

// dashboardFlags holds the root command flags. Values only override the
// config when the flag was given on the command line.
type dashboardFlags struct {
	Config  string
	NoColor bool

	Interval     string
	ProcInterval string
	DiskInterval string
	Retention    string
	MaxSamples   int
	Backend      string

	Sort    string
	Reverse bool
	Filter  string
	Regex   bool
	Group   bool

	Theme   string
	NoMouse bool
	LogFile string
}

// addDashboardFlags registers the sampling, process and display flags on cmd.
func addDashboardFlags(cmd *cobra.Command, f *dashboardFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&f.Interval, "interval", "i", "", "base sampling interval (e.g., 500ms, 2s)")
	fs.StringVar(&f.ProcInterval, "proc-interval", "", "process sampling interval")
	fs.StringVar(&f.DiskInterval, "disk-interval", "", "disk sampling interval")
	fs.StringVar(&f.Retention, "retention", "", "how much history graphs keep (e.g., 60s, 5m)")
	fs.IntVar(&f.MaxSamples, "max-samples", 0, "cap on samples kept per series")
	fs.StringVar(&f.Backend, "backend", "", "metrics backend: "+strings.Join(platform.Backends, ", "))

	fs.StringVarP(&f.Sort, "sort", "s", "", "process sort column (pid, name, cpu, mem, read, write, user, state)")
	fs.BoolVarP(&f.Reverse, "reverse", "r", false, "reverse the process sort order")
	fs.StringVarP(&f.Filter, "filter", "f", "", "only show processes matching this text")
	fs.BoolVar(&f.Regex, "regex", false, "treat --filter as a regular expression")
	fs.BoolVarP(&f.Group, "group", "g", false, "merge processes sharing a name")

	fs.StringVarP(&f.Theme, "theme", "t", "", "color theme: "+strings.Join(monitor.ThemeNames(), ", "))
	fs.BoolVar(&f.NoMouse, "no-mouse", false, "disable mouse support")
	fs.StringVar(&f.LogFile, "log-file", "", "write debug logs to this file")
}

// applyFlags copies the flags set on cmd over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *dashboardFlags) error {
	changed := cmd.Flags().Changed

	durations := []struct {
		flag   string
		value  string
		target *time.Duration
	}{
		{"interval", f.Interval, &cfg.Sampling.Interval},
		{"proc-interval", f.ProcInterval, &cfg.Sampling.Processes},
		{"disk-interval", f.DiskInterval, &cfg.Sampling.Disk},
		{"retention", f.Retention, &cfg.Retention},
	}
	for _, d := range durations {
		if !changed(d.flag) {
			continue
		}
		v, err := parseDurationFlag(d.flag, d.value)
		if err != nil {
			return err
		}
		*d.target = v
	}

	if changed("max-samples") {
		cfg.MaxSamples = f.MaxSamples
	}
	if changed("backend") {
		cfg.Backend = strings.ToLower(strings.TrimSpace(f.Backend))
	}
	if changed("sort") {
		cfg.Processes.Sort = f.Sort
	}
	if f.Reverse {
		cfg.Processes.Descending = !cfg.Processes.Descending
	}
	if changed("filter") {
		cfg.Processes.Filter = f.Filter
	}
	if changed("regex") {
		cfg.Processes.Regex = f.Regex
	}
	if changed("group") {
		cfg.Processes.Group = f.Group
	}
	if changed("theme") {
		cfg.Theme = strings.ToLower(strings.TrimSpace(f.Theme))
	}
	if f.NoColor {
		cfg.Theme = monitor.Mono.Name
	}
	if f.NoMouse {
		cfg.Mouse = false
	}
	return nil
}

// parseDurationFlag parses a duration flag value.
func parseDurationFlag(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", value, name),
			"Try something like 500ms, 2s, or 1m.")
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s must be positive, got %s", name, value),
			"Try something like 500ms, 2s, or 1m.")
	}
	return d, nil
}
