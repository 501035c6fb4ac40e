package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	mllog "github.com/msto63/mlang/foundation/core/log"
	"github.com/msto63/mlang/internal/store"
)

var (
	historyFile      string
	historyFailed    bool
	historyLimit     int
	historyJSON      bool
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded parses",
	Long: `Every parse, check and watch run is recorded in a local SQLite database
(see [history] in the configuration). These commands query and prune it.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded parses, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one record; a unique ID prefix is enough",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyStatsCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFile, "file", "", "only records for this source path")
	historyListCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed parses")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records (0 for all)")
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "print records as JSON")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the record as JSON")
	historyStatsCmd.Flags().BoolVar(&historyJSON, "json", false, "print statistics as JSON")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 0, "age limit (default: history.retention from config)")
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := current.history()
	if err != nil {
		return err
	}

	filter := store.Filter{SourcePath: historyFile, Limit: historyLimit}
	if historyFailed {
		ok := false
		filter.Success = &ok
	}

	records, err := s.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if historyJSON {
		if records == nil {
			records = []*store.Record{}
		}
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no records")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSTATUS\tFILE\tSTMTS\tDURATION")
	for _, rec := range records {
		status := "ok"
		if !rec.Success {
			status = rec.ErrorCode
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(rec.ID), rec.Timestamp.Local().Format("2006-01-02 15:04:05"), status,
			rec.SourcePath, rec.Statements, rec.Duration.Round(time.Microsecond))
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	s, err := current.history()
	if err != nil {
		return err
	}

	rec, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(cmd, rec)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", rec.ID)
	fmt.Fprintf(tw, "Run:\t%s\n", rec.RunID)
	fmt.Fprintf(tw, "Time:\t%s\n", rec.Timestamp.Local().Format(time.RFC3339))
	fmt.Fprintf(tw, "File:\t%s\n", rec.SourcePath)
	fmt.Fprintf(tw, "SHA-256:\t%s\n", rec.SHA256)
	fmt.Fprintf(tw, "Bytes:\t%d\n", rec.Bytes)
	if rec.Success {
		fmt.Fprintf(tw, "Result:\tok\n")
		fmt.Fprintf(tw, "Statements:\t%d\n", rec.Statements)
		fmt.Fprintf(tw, "Tokens:\t%d\n", rec.Tokens)
		fmt.Fprintf(tw, "Duration:\t%s\n", rec.Duration)
	} else {
		fmt.Fprintf(tw, "Result:\t%s\n", rec.ErrorCode)
		if rec.Line > 0 {
			fmt.Fprintf(tw, "Position:\t%d:%d\n", rec.Line, rec.Column)
		}
		fmt.Fprintf(tw, "Error:\t%s\n", rec.ErrorMessage)
	}
	return tw.Flush()
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	s, err := current.history()
	if err != nil {
		return err
	}

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(cmd, stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Parses:    %d (%d ok, %d failed)\n", stats.Total, stats.Succeeded, stats.Failed)
	fmt.Fprintf(out, "Files:     %d\n", stats.Files)
	fmt.Fprintf(out, "Avg time:  %s\n", stats.AvgDuration.Round(time.Microsecond))
	if !stats.LastParse.IsZero() {
		fmt.Fprintf(out, "Last:      %s\n", stats.LastParse.Local().Format("2006-01-02 15:04:05"))
	}

	codes := make([]string, 0, len(stats.ByErrorCode))
	for code := range stats.ByErrorCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(out, "  %-22s %d\n", code, stats.ByErrorCode[code])
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	s, err := current.history()
	if err != nil {
		return err
	}

	age := current.cfg.History.Retention.Duration
	if historyOlderThan > 0 {
		age = historyOlderThan
	}

	deleted, err := s.Prune(cmd.Context(), age)
	if err != nil {
		return err
	}

	current.logger.Info("history pruned", mllog.Fields{"deleted": deleted, "older_than": age.String()})
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d record(s) older than %s\n", deleted, age)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
