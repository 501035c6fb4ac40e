package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/mlang/pkg/core/health"
	"github.com/msto63/mlang/pkg/core/version"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the installation and configuration",
	Long: `Runs a parser self test and checks the configuration file and the
history database. The exit status is 1 when a check is unhealthy.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "print the report as JSON")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	registry := health.NewRegistry("mlang", version.Tool)
	registry.Register(health.ParserSelfTest("parser", current.engine))
	registry.Register(health.FileExists("config", current.cfg.Source, false))

	if current.cfg.History.Enabled {
		registry.Register(health.WritableDir("history-dir", filepath.Dir(current.cfg.History.Path)))
		registry.RegisterFunc("history-db", func(ctx context.Context) health.CheckResult {
			result := health.CheckResult{Status: health.StatusDegraded}
			s, err := current.history()
			if err != nil {
				result.Message = err.Error()
				return result
			}
			stats, err := s.Stats(ctx)
			if err != nil {
				result.Message = err.Error()
				return result
			}
			result.Status = health.StatusHealthy
			result.Message = fmt.Sprintf("%d records", stats.Total)
			return result
		})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	report := registry.Check(ctx)

	if doctorJSON {
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, c := range report.Checks {
			fmt.Fprintf(out, "%-12s %-10s %s\n", c.Name, c.Status, c.Message)
		}
		fmt.Fprintln(out, report.String())
	}

	if report.Status == health.StatusUnhealthy {
		return reported(fmt.Errorf("%d check(s) failed", countStatus(report, health.StatusUnhealthy)))
	}
	return nil
}

func countStatus(report *health.Report, status health.Status) int {
	n := 0
	for _, c := range report.Checks {
		if c.Status == status {
			n++
		}
	}
	return n
}
