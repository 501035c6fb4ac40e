package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/mlang/internal/render"
	"github.com/msto63/mlang/internal/tui"
)

var playgroundCmd = &cobra.Command{
	Use:   "playground [file]",
	Short: "Start the interactive playground",
	Long: `Opens a terminal editor that parses the program on every keystroke and
shows the syntax tree, the tokens or the statistics below it.

Navigation:
  Tab        - switch between AST, tokens and stats
  Ctrl+S     - save to the file given on the command line
  Ctrl+L     - clear the editor
  PgUp/PgDn  - scroll the output
  Esc        - quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlayground,
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(cmd *cobra.Command, args []string) error {
	var path, source string
	if len(args) == 1 {
		path = args[0]
		// A missing file is created on the first save
		if _, err := os.Stat(path); err == nil {
			if _, source, err = readFile(path); err != nil {
				return err
			}
		}
	}

	final, err := tui.Run(tui.Options{
		Engine:   current.engine,
		Renderer: render.New(render.Options{Format: render.FormatTree, Color: !noColor}),
		Path:     path,
		Source:   source,
	})
	if err != nil {
		return err
	}

	name := path
	if name == "" {
		name = "<playground>"
	}
	result, parseErr := current.engine.Parse(final)
	current.record(cmd.Context(), name, final, result, parseErr)
	return nil
}
