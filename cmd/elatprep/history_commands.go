package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"elatprep/internal/failures"
	"elatprep/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(cmd, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), newHistoryListing(store, runs))
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Status", "Videos", "Changed", "Skipped", "Output"},
					historyRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one run and its renamed entries",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(cmd, func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, history.ErrNotFound) {
						return failures.Wrap(failures.ErrInput, "history", "show", "", err)
					}
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), run)
				}
				printHistoryRun(cmd, run)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

// withHistory opens the configured ledger. A ledger that was never created
// is reported instead of being created empty.
func (c *commandContext) withHistory(cmd *cobra.Command, fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig(cmd, nil)
	if err != nil {
		return err
	}
	path := cfg.History.Path
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return failures.Wrap(failures.ErrInput, "history", "open", "",
			fmt.Errorf("no history database at %s; run with --history or set [history] enabled = true", path))
	}
	store, err := history.Open(path)
	if err != nil {
		return failures.Wrap(failures.ErrInput, "history", "open", path, err)
	}
	defer store.Close()
	return fn(store)
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := string(run.Status)
		if run.DryRun {
			status += " (dry run)"
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			status,
			strconv.Itoa(run.Videos),
			strconv.Itoa(run.Changed),
			strconv.Itoa(run.Skipped),
			run.Output,
		})
	}
	return rows
}

func printHistoryRun(cmd *cobra.Command, run *history.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}

	kind := statusOK
	message := string(run.Status)
	switch run.Status {
	case history.StatusFailed:
		kind = statusError
		message = fmt.Sprintf("%s (%s): %s", run.Status, run.ErrorKind, run.Error)
	case history.StatusCanceled:
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Status", kind, message, colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, run.Duration().Round(time.Millisecond).String(), colorize))
	fmt.Fprintln(out, renderStatusLine("Dry run", statusInfo, yesNo(run.DryRun), colorize))
	fmt.Fprintln(out, renderStatusLine("Input", statusInfo, run.Input, colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, run.Output, colorize))
	fmt.Fprintln(out, renderStatusLine("Video dir", statusInfo, run.VideoDir, colorize))
	fmt.Fprintln(out, renderStatusLine("Entries", statusInfo,
		fmt.Sprintf("%d total, %d videos, %d changed, %d skipped", run.Total, run.Videos, run.Changed, run.Skipped), colorize))

	if len(run.Renames) > 0 {
		rows := make([][]string, 0, len(run.Renames))
		for _, rename := range run.Renames {
			previous := rename.Previous
			if !rename.HadPrevious {
				previous = "(none)"
			}
			rows = append(rows, []string{rename.ComponentID, previous, rename.DisplayName, rename.ClientVideoID})
		}
		fmt.Fprintln(out, renderTable([]string{"Component", "Previous", "Display Name", "client_video_id"}, rows, nil))
	}
	if len(run.Skips) > 0 {
		rows := make([][]string, 0, len(run.Skips))
		for _, skip := range run.Skips {
			rows = append(rows, []string{skip.Key, skip.Reason})
		}
		fmt.Fprintln(out, renderTable([]string{"Skipped Key", "Reason"}, rows, nil))
	}
}
