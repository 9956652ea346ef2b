package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/doctor"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/harvest/platform"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/ui"
	"github.com/spf13/cobra"
)

// doctorTimeout bounds the backend collection done by doctor.
const doctorTimeout = 10 * time.Second

var doctorBackend string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration, backend and terminal problems",
	Long: `Check that the configuration is valid, which metric categories the
backend can collect on this machine, and whether the terminal can host the
dashboard.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
		defer cancel()

		results := doctor.RunAll(doctorChecks(ctx, flags.Config, doctorBackend, int(os.Stdout.Fd())))
		printDoctorResults(cmd.OutOrStdout(), results)
		if doctor.HasFailures(results) {
			return errors.New(errors.ErrStartup,
				"rtop doctor found problems",
				"Fix the failed checks above, then run 'rtop doctor' again.")
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringVar(&doctorBackend, "backend", "", "backend to check (default: from config)")
	rootCmd.AddCommand(doctorCmd)
}

// doctorChecks assembles the checks. The backend comes from the flag, then
// the config, then auto.
func doctorChecks(ctx context.Context, configPath, backend string, fd int) []doctor.Check {
	checks := []doctor.Check{
		&doctor.ConfigFileCheck{ConfigPath: configPath},
		&doctor.ConfigSchemaCheck{ConfigPath: configPath},
	}

	if backend == "" {
		if cfg, _, err := config.LoadOrDefault(configPath); err == nil {
			backend = cfg.Backend
		}
	}
	src, err := platform.ByName(backend, logger.Noop())
	if err != nil {
		checks = append(checks, doctor.Failed("backend", doctor.CategoryBackend, err))
	} else {
		checks = append(checks, doctor.BackendChecks(ctx, src)...)
	}

	return append(checks, &doctor.TerminalCheck{Fd: fd})
}

func printDoctorResults(w io.Writer, results []doctor.CheckResult) {
	grouped := doctor.GroupByCategory(results)
	for _, category := range doctor.Categories {
		group := grouped[category]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintln(w, ui.InfoStyle().Render(category))
		for _, r := range group {
			fmt.Fprintf(w, "  %s %s\n", statusSymbol(r.Status), r.Message)
			if r.Suggestion != "" && r.Status != doctor.StatusPass {
				fmt.Fprintf(w, "    %s\n", ui.MutedStyle().Render(r.Suggestion))
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, doctor.Summary(results))
}

func statusSymbol(s doctor.CheckStatus) string {
	switch s {
	case doctor.StatusPass:
		return ui.SuccessStyle().Render(ui.SymbolSuccess)
	case doctor.StatusWarn:
		return ui.WarningStyle().Render(ui.SymbolWarning)
	default:
		return ui.ErrorStyle().Render(ui.SymbolFail)
	}
}
