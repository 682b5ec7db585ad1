package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"elatprep/internal/failures"
	"elatprep/internal/logging"
	"elatprep/internal/preprocess"
	"elatprep/internal/rewrite"
)

type runFlags struct {
	input    string
	output   string
	videoDir string
	dryRun   bool
	summary  bool
	json     bool
	history  bool
}

func bindRunFlags(cmd *cobra.Command, run *runFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&run.input, "input", "i", "", "Course structure JSON to read")
	flags.StringVarP(&run.output, "output", "o", "", "Path for the rewritten structure JSON")
	flags.StringVarP(&run.videoDir, "video-dir", "d", "", "Directory of <component_id>.xml video descriptors")
	flags.BoolVar(&run.dryRun, "dry-run", false, "Rewrite in memory and report without writing the output")
	flags.BoolVar(&run.summary, "summary", false, "Print a table of rewritten display names")
	flags.BoolVar(&run.json, "json", false, "Print the run result as JSON")
	flags.BoolVar(&run.history, "history", false, "Record the run in the history database")
}

func newRunCommand(ctx *commandContext, run *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rewrite video display names (default command)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreprocess(cmd, ctx, run)
		},
	}
	bindRunFlags(cmd, run)
	return cmd
}

func runPreprocess(cmd *cobra.Command, ctx *commandContext, run *runFlags) error {
	cfg, err := ctx.ensureConfig(cmd, run)
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return failures.Wrap(failures.ErrConfiguration, "cli", "configure logging", "", err)
	}

	result, err := preprocess.Run(cmd.Context(), cfg, logger, preprocess.Options{DryRun: run.dryRun})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if run.json {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	if run.summary {
		printRunSummary(out, result, shouldColorize(out))
	}
	if result.DryRun {
		fmt.Fprintf(out, "Dry run complete; no output written (would write %s)\n", result.Output)
		return nil
	}
	fmt.Fprintf(out, "Processing successful. Results have been saved to: %s\n", result.Output)
	return nil
}

func printRunSummary(out io.Writer, result *preprocess.Result, colorize bool) {
	report := result.Report
	for _, line := range renderSectionHeader("Run "+result.RunID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Entries", statusInfo, strconv.Itoa(report.Total), colorize))
	fmt.Fprintln(out, renderStatusLine("Videos rewritten", statusOK,
		fmt.Sprintf("%d (%d changed)", report.Videos(), report.Changed()), colorize))
	fmt.Fprintln(out, renderStatusLine("Other components", statusInfo, strconv.Itoa(report.NonVideo), colorize))
	skippedKind := statusOK
	if len(report.Skipped) > 0 {
		skippedKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Malformed keys", skippedKind, strconv.Itoa(len(report.Skipped)), colorize))

	if len(report.Renamed) > 0 {
		fmt.Fprintln(out, renderRenameTable(report.Renamed))
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintln(out, renderSkipTable(report.Skipped))
	}
}

func renderRenameTable(renames []rewrite.Rename) string {
	tableRows := make([][]string, 0, len(renames))
	for _, rename := range renames {
		previous := rename.Previous
		if !rename.HadPrevious {
			previous = "(none)"
		}
		tableRows = append(tableRows, []string{rename.ComponentID, previous, rename.DisplayName, yesNo(rename.Changed())})
	}
	return renderTable([]string{"Component", "Previous", "Display Name", "Changed"}, tableRows, nil)
}

func renderSkipTable(skips []rewrite.Skip) string {
	tableRows := make([][]string, 0, len(skips))
	for _, skip := range skips {
		tableRows = append(tableRows, []string{skip.Key, skip.Reason})
	}
	return renderTable([]string{"Skipped Key", "Reason"}, tableRows, nil)
}
