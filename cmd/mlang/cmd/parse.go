package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/mlang/internal/render"
)

var (
	parseFormat string
	parseStats  bool
	parseJSON   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a program and print its syntax tree",
	Long: `Parses a program and prints the syntax tree. On a syntax error the
offending line is shown with a caret under the column and the exit status is 2.

Formats:
  tree     - indented node tree (default)
  compact  - one statement per line as source text

Examples:
  mlang parse countdown.ml
  mlang parse --format compact --stats prog.ml
  cat prog.ml | mlang parse -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "output format: tree or compact (default from config)")
	parseCmd.Flags().BoolVar(&parseStats, "stats", false, "print statistics after the tree")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print statistics as JSON instead of the tree")
}

func runParse(cmd *cobra.Command, args []string) error {
	path, source, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	result, err := current.engine.Parse(source)
	current.record(cmd.Context(), path, source, result, err)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), current.renderer.Diagnostic(path, source, err))
		return reported(err)
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Stats)
	}

	renderer := current.renderer
	if parseFormat != "" {
		renderer = render.New(render.Options{Format: parseFormat, Color: current.cfg.Output.Color && !noColor})
	}

	fmt.Fprint(out, renderer.Program(result.Program))
	if parseStats {
		fmt.Fprint(out, renderer.Stats(result.Stats, result.Duration))
	}
	return nil
}
