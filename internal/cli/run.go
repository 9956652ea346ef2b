package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/harvest/platform"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/monitor"
	"github.com/rileyhilliard/rtop/internal/sampler"
	"github.com/rileyhilliard/rtop/internal/store"
	"github.com/rileyhilliard/rtop/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// debugLogFile is where RTOP_DEBUG logs go when --log-file is not given.
const debugLogFile = "rtop-debug.log"

// runDashboard resolves the config, probes the backend and hands the
// terminal to the dashboard until the user quits or a signal arrives.
func runDashboard(cmd *cobra.Command, f *dashboardFlags) error {
	cfg, path, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	if !isTerminal() {
		return errors.NewStartup("rtop needs an interactive terminal",
			"Run it directly in a terminal instead of piping or redirecting its output.")
	}

	closeLog, err := setupLogging(f.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	lg := logger.Default()
	if path != "" {
		lg.Info("config: loaded %s", path)
	}

	opts, err := dashboardOptions(cfg, lg)
	if err != nil {
		return err
	}

	src, err := platform.ByName(cfg.Backend, lg)
	if err != nil {
		return err
	}

	spinner := ui.NewSpinner(fmt.Sprintf("Probing %s backend", src.Name()), cmd.ErrOrStderr())
	spinner.Start()
	dash, err := monitor.New(src, opts)
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Success()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return dash.Run(ctx)
}

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// loadConfig finds and loads the config, layers the flags on top and
// validates the result.
func loadConfig(cmd *cobra.Command, f *dashboardFlags) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(f.Config)
	if err != nil {
		return nil, "", err
	}
	if err := applyFlags(cmd, cfg, f); err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setupLogging points the standard logger at a file while the dashboard owns
// the terminal, or discards it. The returned func closes the file.
func setupLogging(path string) (func(), error) {
	if path == "" && logger.DebugEnabled() {
		path = debugLogFile
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}

	fh, err := tea.LogToFile(path, "rtop")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't open log file "+path,
			"Check the directory exists and is writable.")
	}
	return func() { _ = fh.Close() }, nil
}

// dashboardOptions converts a validated config into monitor options.
func dashboardOptions(cfg *config.Config, lg logger.Logger) (monitor.Options, error) {
	root, err := config.BuildLayout(cfg.Layout)
	if err != nil {
		return monitor.Options{}, err
	}
	col, err := store.ParseColumn(cfg.Processes.Sort)
	if err != nil {
		return monitor.Options{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't sort processes by '%s'", cfg.Processes.Sort), "")
	}
	theme, ok := monitor.ThemeByName(cfg.Theme)
	if !ok {
		return monitor.Options{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown theme '%s'", cfg.Theme), "")
	}

	s := cfg.Sampling
	return monitor.Options{
		Intervals: sampler.Intervals{
			Base:        s.Interval,
			CPU:         s.CPU,
			Memory:      s.Memory,
			Network:     s.Network,
			Disk:        s.Disk,
			Temperature: s.Temperature,
			Processes:   s.Processes,
		},
		Retention:  cfg.Retention,
		MaxSamples: cfg.MaxSamples,
		Layout:     root,
		View: store.View{
			Sort:       col,
			Descending: cfg.Processes.Descending,
			Filter:     cfg.Processes.Filter,
			Regex:      cfg.Processes.Regex,
			Group:      cfg.Processes.Group,
		},
		Theme:  theme,
		Redraw: cfg.Redraw,
		Mouse:  cfg.Mouse,
		Logger: lg,
	}, nil
}
