package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkQuiet bool

var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Check that programs parse",
	Long: `Parses every given file and reports each one as ok or with a diagnostic.
Without files the program is read from stdin. The exit status is that of the
first failure.

Examples:
  mlang check *.ml
  mlang check -q prog.ml && echo valid`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "only print failures")
}

func runCheck(cmd *cobra.Command, args []string) error {
	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	var firstErr error
	failed := 0
	for _, arg := range inputs {
		path, source, err := readSource(cmd, []string{arg})
		if err == nil {
			var stmts int
			stmts, err = checkOne(cmd, path, source)
			if err == nil {
				if !checkQuiet {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d statements)\n", path, stmts)
				}
				continue
			}
		} else {
			printError(err)
		}

		failed++
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		if len(inputs) > 1 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d file(s) failed\n", failed, len(inputs))
		}
		return reported(firstErr)
	}
	return nil
}

func checkOne(cmd *cobra.Command, path, source string) (int, error) {
	result, err := current.parses.Parse(source)
	current.record(cmd.Context(), path, source, result, err)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), current.renderer.Diagnostic(path, source, err))
		return 0, err
	}
	return result.Stats.Statements, nil
}
