package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Prints the configuration after defaults and environment expansion.
The output can be saved and used with --config.

Examples:
  mlang config show > mlang.toml
  mlang config show --format yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "output format: toml or yaml")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if current.cfg.Source != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "# loaded from %s\n", current.cfg.Source)
	}
	return current.cfg.Write(cmd.OutOrStdout(), configFormat)
}
