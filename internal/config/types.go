package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .rtop.yaml configuration file.
type Config struct {
	Version    int            `yaml:"version" mapstructure:"version"`
	Sampling   SamplingConfig `yaml:"sampling" mapstructure:"sampling"`
	Retention  time.Duration  `yaml:"retention" mapstructure:"retention"`
	MaxSamples int            `yaml:"max_samples" mapstructure:"max_samples"`
	Backend    string         `yaml:"backend" mapstructure:"backend"`
	Processes  ProcessConfig  `yaml:"processes" mapstructure:"processes"`
	Layout     LayoutConfig   `yaml:"layout" mapstructure:"layout"`
	Theme      string         `yaml:"theme" mapstructure:"theme"`
	Redraw     time.Duration  `yaml:"redraw" mapstructure:"redraw"`
	Mouse      bool           `yaml:"mouse" mapstructure:"mouse"`
}

// SamplingConfig sets how often each metric category is collected.
type SamplingConfig struct {
	// Interval is the base period. Categories left at zero use it.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	CPU         time.Duration `yaml:"cpu,omitempty" mapstructure:"cpu"`
	Memory      time.Duration `yaml:"memory,omitempty" mapstructure:"memory"`
	Network     time.Duration `yaml:"network,omitempty" mapstructure:"network"`
	Disk        time.Duration `yaml:"disk,omitempty" mapstructure:"disk"`
	Temperature time.Duration `yaml:"temperature,omitempty" mapstructure:"temperature"`
	Processes   time.Duration `yaml:"processes,omitempty" mapstructure:"processes"`
}

// ProcessConfig is the initial view of the process table.
type ProcessConfig struct {
	// Sort column: pid, name, cpu, mem, read, write, user or state.
	Sort string `yaml:"sort" mapstructure:"sort"`

	// Descending puts the largest values first.
	Descending bool `yaml:"descending" mapstructure:"descending"`

	// Filter is matched case-insensitively against name and command line.
	Filter string `yaml:"filter,omitempty" mapstructure:"filter"`

	// Regex treats Filter as a regular expression instead of a substring.
	Regex bool `yaml:"regex" mapstructure:"regex"`

	// Group merges processes sharing a name into one row.
	Group bool `yaml:"group" mapstructure:"group"`
}

// LayoutConfig describes the dashboard as rows stacked top to bottom.
type LayoutConfig struct {
	Rows []RowConfig `yaml:"rows" mapstructure:"rows"`
}

// RowConfig is a horizontal band holding widgets side by side.
type RowConfig struct {
	Ratio   int            `yaml:"ratio,omitempty" mapstructure:"ratio"`
	Widgets []WidgetConfig `yaml:"widgets" mapstructure:"widgets"`
}

// WidgetConfig is a single widget, or a nested stack of rows when Rows is set.
type WidgetConfig struct {
	Type  string      `yaml:"type,omitempty" mapstructure:"type"`
	Ratio int         `yaml:"ratio,omitempty" mapstructure:"ratio"`
	Rows  []RowConfig `yaml:"rows,omitempty" mapstructure:"rows"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Sampling: SamplingConfig{
			Interval: time.Second,
			Disk:     2 * time.Second,
		},
		Retention:  60 * time.Second,
		MaxSamples: 3600,
		Backend:    "auto",
		Processes: ProcessConfig{
			Sort:       "cpu",
			Descending: true,
		},
		Layout: DefaultLayout(),
		Theme:  "synthwave",
		Redraw: 5 * time.Second,
		Mouse:  true,
	}
}

// DefaultLayout is a cpu graph on top, memory and network in the middle,
// and disks, temperatures and processes along the bottom.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{Rows: []RowConfig{
		{Ratio: 1, Widgets: []WidgetConfig{{Type: "cpu"}}},
		{Ratio: 1, Widgets: []WidgetConfig{{Type: "mem"}, {Type: "net"}}},
		{Ratio: 2, Widgets: []WidgetConfig{{Type: "disk"}, {Type: "temp"}, {Type: "proc", Ratio: 2}}},
	}}
}
