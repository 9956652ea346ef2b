package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/harvest/platform"
	"github.com/rileyhilliard/rtop/internal/monitor"
	"github.com/rileyhilliard/rtop/internal/store"
	"github.com/rileyhilliard/rtop/internal/util"
)

// MinInterval is the shortest accepted sampling or redraw period.
const MinInterval = 100 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but rtop only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest rtop: https://github.com/rileyhilliard/rtop/releases")
	}

	if err := validateSampling(cfg.Sampling); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'sampling' section in your .rtop.yaml.")
	}

	longest := longestInterval(cfg.Sampling)
	if cfg.Retention < longest {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Retention %s is shorter than the %s sampling interval", cfg.Retention, longest),
			"Graphs need at least one sample of history. Raise 'retention' or lower the interval.")
	}

	if cfg.MaxSamples < 2 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("max_samples must be at least 2, got %d", cfg.MaxSamples),
			"A graph needs two points to draw a line.")
	}

	if !slices.Contains(platform.Backends, cfg.Backend) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown backend '%s'", cfg.Backend),
			didYouMean(cfg.Backend, platform.Backends)+"Valid backends: "+strings.Join(platform.Backends, ", "))
	}

	if _, err := store.ParseColumn(cfg.Processes.Sort); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't sort processes by '%s'", cfg.Processes.Sort),
			didYouMean(cfg.Processes.Sort, columnNames())+"Valid columns: "+strings.Join(columnNames(), ", "))
	}

	if _, ok := monitor.ThemeByName(cfg.Theme); !ok {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown theme '%s'", cfg.Theme),
			didYouMean(cfg.Theme, monitor.ThemeNames())+"Valid themes: "+strings.Join(monitor.ThemeNames(), ", "))
	}

	if cfg.Redraw != 0 && cfg.Redraw < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Redraw interval %s is below the %s minimum", cfg.Redraw, MinInterval),
			"Use 0 to only redraw on new data, or a value like 5s.")
	}

	if _, err := BuildLayout(cfg.Layout); err != nil {
		return err
	}

	return nil
}

func validateSampling(s SamplingConfig) error {
	if s.Interval < MinInterval {
		return fmt.Errorf("sampling interval %s is below the %s minimum", s.Interval, MinInterval)
	}
	overrides := []struct {
		name string
		d    time.Duration
	}{
		{"cpu", s.CPU},
		{"memory", s.Memory},
		{"network", s.Network},
		{"disk", s.Disk},
		{"temperature", s.Temperature},
		{"processes", s.Processes},
	}
	for _, o := range overrides {
		if o.d != 0 && o.d < MinInterval {
			return fmt.Errorf("%s interval %s is below the %s minimum", o.name, o.d, MinInterval)
		}
	}
	return nil
}

func longestInterval(s SamplingConfig) time.Duration {
	longest := s.Interval
	for _, d := range []time.Duration{s.CPU, s.Memory, s.Network, s.Disk, s.Temperature, s.Processes} {
		longest = max(longest, d)
	}
	return longest
}

func columnNames() []string {
	names := make([]string, len(store.Columns))
	for i, c := range store.Columns {
		names[i] = c.String()
	}
	return names
}

// didYouMean returns a "Did you mean" hint for a mistyped name, or "".
func didYouMean(input string, candidates []string) string {
	if s := util.SuggestSimilar(input, candidates, 2); len(s) > 0 {
		return fmt.Sprintf("Did you mean '%s'? ", s[0])
	}
	return ""
}
