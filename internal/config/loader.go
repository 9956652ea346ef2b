package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".rtop.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/rtop"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. RTOP_SAMPLING_INTERVAL.
	EnvPrefix = "RTOP"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'rtop config path' to see where rtop looks, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .rtop.yaml in current directory
// 3. ~/.config/rtop/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if global := GlobalPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalPath returns ~/.config/rtop/config.yaml, or "" without a home
// directory.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault loads the config found for explicit, or the defaults with
// environment overrides applied when there is no file. It also returns the
// path used, which is empty for defaults.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// newViper returns a viper instance with defaults and RTOP_* environment
// overrides registered.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every scalar key so environment overrides apply
// even when the file omits it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("sampling.interval", d.Sampling.Interval)
	v.SetDefault("sampling.cpu", d.Sampling.CPU)
	v.SetDefault("sampling.memory", d.Sampling.Memory)
	v.SetDefault("sampling.network", d.Sampling.Network)
	v.SetDefault("sampling.disk", d.Sampling.Disk)
	v.SetDefault("sampling.temperature", d.Sampling.Temperature)
	v.SetDefault("sampling.processes", d.Sampling.Processes)
	v.SetDefault("retention", d.Retention)
	v.SetDefault("max_samples", d.MaxSamples)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("processes.sort", d.Processes.Sort)
	v.SetDefault("processes.descending", d.Processes.Descending)
	v.SetDefault("processes.filter", d.Processes.Filter)
	v.SetDefault("processes.regex", d.Processes.Regex)
	v.SetDefault("processes.group", d.Processes.Group)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("redraw", d.Redraw)
	v.SetDefault("mouse", d.Mouse)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()
	// A file layout replaces the default one wholesale rather than merging
	// into it row by row.
	cfg.Layout.Rows = nil

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	if len(cfg.Layout.Rows) == 0 {
		cfg.Layout = DefaultLayout()
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))

	return cfg, nil
}
