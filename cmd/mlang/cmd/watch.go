package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/mlang/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-parse a file whenever it changes",
	Long: `Parses a file, then parses it again every time it is saved and prints
the syntax tree or the diagnostic. Stops on Ctrl+C.

Examples:
  mlang watch countdown.ml
  mlang watch --debounce 1s prog.ml`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before re-parsing (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debounce := current.cfg.Watch.Debounce.Duration
	if watchDebounce > 0 {
		debounce = watchDebounce
	}

	out := cmd.OutOrStdout()
	w, err := watch.New(watch.Options{
		Path:     args[0],
		Debounce: debounce,
		Engine:   current.engine,
		Logger:   current.logger,
	}, func(ev watch.Event) {
		current.record(ctx, args[0], ev.Source, ev.Result, ev.Err)

		fmt.Fprintf(out, "--- #%d %s %s\n", ev.Seq, ev.Time.Format("15:04:05"), args[0])
		if ev.Err != nil {
			fmt.Fprint(out, current.renderer.Diagnostic(args[0], ev.Source, ev.Err))
			return
		}
		fmt.Fprint(out, current.renderer.Program(ev.Result.Program))
		fmt.Fprint(out, current.renderer.Stats(ev.Result.Stats, ev.Result.Duration))
	})
	if err != nil {
		return err
	}

	return w.Run(ctx)
}
