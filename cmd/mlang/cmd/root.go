package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	mllog "github.com/msto63/mlang/foundation/core/log"
	"github.com/msto63/mlang/foundation/lang"
	"github.com/msto63/mlang/internal/render"
	"github.com/msto63/mlang/internal/store"
	"github.com/msto63/mlang/pkg/core/cache"
	"github.com/msto63/mlang/pkg/core/config"
	"github.com/msto63/mlang/pkg/core/logging"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noHistory bool
)

var rootCmd = &cobra.Command{
	Use:   "mlang",
	Short: "mLANG - front end for a small imperative language",
	Long: `mlang tokenizes and parses mLANG programs and prints their syntax trees.

Commands:
  tokens      - print the token stream
  parse       - print the syntax tree
  check       - validate one or more files
  watch       - re-parse a file on every change
  playground  - interactive editor with a live syntax tree
  history     - inspect recorded parses
  config      - show the effective configuration
  doctor      - check the installation`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// app holds what every command needs, built once per invocation
type app struct {
	cfg      *config.Config
	logger   *mllog.Logger
	runID    string
	engine   *lang.Engine
	parses   *cache.ParseCache
	renderer *render.Renderer
	store    store.HistoryStore
	logFile  *os.File
}

var current *app

// Execute runs the CLI. Errors not yet shown to the user are printed here.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if current != nil {
		current.close()
		current = nil
	}
	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			printError(err)
		}
	}
	return err
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return mlerror.GetCode(err).ExitCode()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $MLANG_CONFIG, ./mlang.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record parses in the history")
}

func setup(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	lc := logging.ConfigFor(cfg, "mlang", verbose)
	lc.RunID = runID
	lc.Output = cmd.ErrOrStderr()
	var logFile *os.File
	if cfg.General.LogFile != "" {
		if logFile, err = logging.OpenLogFile(cfg.General.LogFile); err != nil {
			return err
		}
		lc.AdditionalOutputs = append(lc.AdditionalOutputs, logFile)
	}
	logger := logging.NewLogger(lc)

	engine, err := lang.NewEngine(lang.Options{
		Logger:         logger,
		MaxInputLength: cfg.Parser.MaxInputLength,
		MaxDepth:       cfg.Parser.MaxDepth,
	})
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return err
	}

	current = &app{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		runID:   runID,
		engine:  engine,
		parses:  cache.NewParseCache(engine, cache.DefaultConfig()),
		renderer: render.New(render.Options{
			Format: cfg.Output.Format,
			Color:  cfg.Output.Color && !noColor,
		}),
	}

	logger.Debug("configuration loaded", mllog.Fields{
		"source":  cfg.Source,
		"command": cmd.Name(),
	})
	return nil
}

// history opens the parse history store on first use
func (a *app) history() (store.HistoryStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.NewSQLiteHistoryStore(store.SQLiteConfig{Path: a.cfg.History.Path})
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// record saves the outcome of a parse. Failures are logged, never returned.
func (a *app) record(ctx context.Context, path, source string, result *lang.Result, parseErr error) {
	if !a.cfg.History.Enabled || noHistory {
		return
	}

	rec := store.NewRecord(path, source, a.runID)
	if parseErr != nil {
		rec.ErrorCode = mlerror.GetCode(parseErr).String()
		rec.ErrorMessage = parseErr.Error()
		if synErr, ok := lang.SyntaxErrorOf(parseErr); ok {
			rec.Line = synErr.Found.Line
			rec.Column = synErr.Found.Column
		}
	} else {
		rec.Success = true
		rec.Statements = result.Stats.Statements
		rec.Tokens = result.Stats.Tokens
		rec.Duration = result.Duration
	}

	s, err := a.history()
	if err == nil {
		err = s.Save(ctx, rec)
	}
	if err != nil {
		a.logger.WarnWithErr("failed to record parse history", err, mllog.Fields{"path": path})
	}
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.WarnWithErr("failed to close history store", err)
		}
		a.store = nil
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// reportedError marks an error whose details were already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return &reportedError{err: err}
}

// printError prints a one-line summary; --verbose adds the structured report
func printError(err error) {
	w := rootCmd.ErrOrStderr()
	if code := mlerror.GetCode(err); code != mlerror.CodeUnknown {
		fmt.Fprintf(w, "Error [%s]: %v\n", code, err)
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}

	var se *mlerror.Error
	if verbose && errors.As(err, &se) {
		fmt.Fprintln(w, se.String())
	}
}
