package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/ui"
	"github.com/rileyhilliard/rtop/internal/util"
	"github.com/spf13/cobra"
)

// flags holds every root flag. Subcommands read Config and NoColor.
var flags dashboardFlags

var rootCmd = &cobra.Command{
	Use:   "rtop",
	Short: "Terminal system resource monitor",
	Long: `rtop is a terminal dashboard for CPU, memory, network, disk,
temperature and process metrics.

Configuration is read from --config, ./.rtop.yaml or
~/.config/rtop/config.yaml, in that order. RTOP_* environment
variables override the file and flags override both.

Press ? inside the dashboard for keyboard shortcuts.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flags.NoColor {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd, &flags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.Config, "config", "", "config file (default: ./.rtop.yaml, then ~/.config/rtop/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable colors")
	addDashboardFlags(rootCmd, &flags)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err in the structured "✗ message" form, adding a
// did-you-mean hint for mistyped subcommands.
func printError(w io.Writer, err error) {
	if isUnknownCommandError(err) {
		msg := err.Error()
		suggestion := "Run 'rtop --help' to see available commands and flags."
		if name := extractUnknownCommand(err); name != "" {
			if similar := util.SuggestSimilar(name, commandNames(), 2); len(similar) > 0 {
				suggestion = fmt.Sprintf("Did you mean 'rtop %s'?", similar[0])
			}
		}
		err = errors.New(errors.ErrConfig, msg, suggestion)
	}

	var rtErr *errors.Error
	if !stderrors.As(err, &rtErr) {
		rtErr = &errors.Error{Message: err.Error()}
	}
	headline, rest, _ := strings.Cut(rtErr.Error(), "\n")
	fmt.Fprintf(w, "%s\n%s", ui.ErrorStyle().Render(headline), rest)
}

// isUnknownCommandError reports whether err comes from cobra rejecting the
// command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the quoted name out of cobra's
// `unknown command "foo" for "rtop"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

func commandNames() []string {
	var names []string
	for _, c := range rootCmd.Commands() {
		if c.IsAvailableCommand() {
			names = append(names, c.Name())
		}
	}
	return names
}
