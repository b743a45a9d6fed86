package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/inovacc/starcards/internal/config"
	"github.com/inovacc/starcards/internal/model"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage starcards configuration",
	Long: `Commands for managing starcards configuration.

Settings are stored in config.ini in the application directory and can be
overridden by STARCARDS_API_URL and command-line flags.

Available Commands:
  show      Show the effective configuration
  set       Change a setting
  reset     Restore the defaults
  path      Print the configuration file path`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		return printConfig(cmd, cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Example: `  starcards config set api.category planets
  starcards config set storage.backend sqlite
  starcards config set web.port 9000`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}

		// flags and env are not persisted, so start from the file alone
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}

		if err := config.Set(&cfg, args[0], args[1]); err != nil {
			return err
		}

		if err := config.SaveFile(path, cfg); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", args[0], config.Values(cfg)[args[0]])

		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}

		if err := config.SaveFile(path, model.DefaultConfig()); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration reset to defaults")

		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd, configResetCmd, configPathCmd)
}

func printConfig(cmd *cobra.Command, cfg model.Config) error {
	values := config.Values(cfg)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	for _, key := range config.Keys() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", key, values[key])
	}

	if os.Getenv(config.EnvAPIURL) != "" {
		_, _ = fmt.Fprintf(w, "\n(api.base_url overridden by %s)\n", config.EnvAPIURL)
	}

	return w.Flush()
}
