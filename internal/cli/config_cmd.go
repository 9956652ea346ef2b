package cli

import (
	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect rtop configuration",
	Args:  cobra.NoArgs,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML",
	Long: `Print the configuration rtop would run with: the config file merged
over the defaults with RTOP_* environment overrides applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.LoadOrDefault(flags.Config)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
		}
		source := "defaults"
		if path != "" {
			source = path
		}
		cmd.Printf("# source: %s\n%s", source, out)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show which config file rtop uses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(flags.Config)
		if err != nil {
			return err
		}
		if path != "" {
			cmd.Printf("%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
			return nil
		}

		cmd.Printf("%s No config file found, using defaults\n", ui.WarningStyle().Render(ui.SymbolPending))
		cmd.Printf("  %s ./%s\n", ui.MutedStyle().Render(ui.SymbolArrow), config.ConfigFileName)
		if global := config.GlobalPath(); global != "" {
			cmd.Printf("  %s %s\n", ui.MutedStyle().Render(ui.SymbolArrow), global)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
