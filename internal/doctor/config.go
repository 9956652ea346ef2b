package doctor

import (
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/errors"
)

// ConfigFileCheck reports which config file would be used.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return failure(err, "Check the path passed to --config.")
	}
	if path == "" {
		return CheckResult{
			Status:  StatusPass,
			Message: "No config file, using defaults",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

// ConfigSchemaCheck verifies that the resolved config passes validation.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run() CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return failure(err, "Check the YAML syntax in your config file.")
	}
	if err := config.Validate(cfg); err != nil {
		return failure(err, "Fix the configuration errors in your .rtop.yaml.")
	}
	return CheckResult{
		Status:  StatusPass,
		Message: "Configuration valid",
	}
}

// failure turns err into a failed result, keeping the suggestion of a
// structured error when it has one.
func failure(err error, fallback string) CheckResult {
	var rtErr *errors.Error
	if stderrors.As(err, &rtErr) {
		suggestion := rtErr.Suggestion
		if suggestion == "" {
			suggestion = fallback
		}
		return CheckResult{Status: StatusFail, Message: rtErr.Message, Suggestion: suggestion}
	}
	return CheckResult{Status: StatusFail, Message: err.Error(), Suggestion: fallback}
}
