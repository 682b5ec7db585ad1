package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"elatprep/internal/config"
	"elatprep/internal/failures"
	"elatprep/internal/history"
	"elatprep/internal/logging"
	"elatprep/internal/rewrite"
	"elatprep/internal/structure"
)

// LockSuffix is appended to the output path to name the run lock.
const LockSuffix = ".lock"

// Options adjust a single run.
type Options struct {
	// DryRun loads and rewrites in memory but never writes the output.
	DryRun bool
	// RunID overrides the generated run identifier.
	RunID string
	// Now is the clock used for run timestamps; time.Now when nil.
	Now func() time.Time
}

// Result describes a completed run.
type Result struct {
	RunID     string         `json:"run_id"`
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	VideoDir  string         `json:"video_dir"`
	DryRun    bool           `json:"dry_run"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
	Report    rewrite.Report `json:"report"`
}

// Run executes load, rewrite, and write for cfg. On any error the output
// path is left exactly as it was. When history is enabled the run is
// recorded whether it succeeds or fails; a ledger failure is logged and does
// not change the run's outcome.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, failures.Wrap(failures.ErrConfiguration, "preprocess", "validate config", "configuration is nil", nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logging.WithRunID(ctx, runID)
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "preprocess"))

	result := &Result{
		RunID:     runID,
		Input:     cfg.Paths.Input,
		Output:    cfg.Paths.Output,
		VideoDir:  cfg.Paths.VideoDir,
		DryRun:    opts.DryRun,
		StartedAt: now(),
	}

	err := execute(ctx, cfg, logger, opts, result)
	result.Duration = now().Sub(result.StartedAt)

	if cfg.History.Enabled {
		recordHistory(ctx, cfg.History.Path, logger, result, now(), err)
	}
	if err != nil {
		logging.ErrorWithContext(logger, "preprocessing failed",
			"run_failed",
			logging.String("error_kind", failures.Kind(err)),
			logging.Error(err),
		)
		return nil, err
	}
	logger.Info("preprocessing complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("output", result.Output),
		logging.Bool("dry_run", result.DryRun),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options, result *Result) error {
	if err := cfg.ValidateRun(); err != nil {
		return err
	}
	logger.Info("preprocessing started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("input", cfg.Paths.Input),
		logging.String("output", cfg.Paths.Output),
		logging.String("video_dir", cfg.Paths.VideoDir),
		logging.Bool("dry_run", opts.DryRun),
	)

	if !opts.DryRun {
		unlock, err := lockOutput(cfg.Paths.Output)
		if err != nil {
			return err
		}
		defer unlock()
	}

	doc, err := structure.Load(cfg.Paths.Input)
	if err != nil {
		return err
	}
	logger.Debug("structure document loaded", logging.Int("entries", doc.Len()))

	report, err := rewrite.New(cfg.Paths.VideoDir, logger).Apply(ctx, doc)
	result.Report = report
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.DryRun {
		logger.Info("dry run; output not written", logging.String("output", cfg.Paths.Output))
		return nil
	}
	return structure.Write(cfg.Paths.Output, doc)
}

// lockOutput takes an exclusive lock on <output>.lock so concurrent runs
// cannot interleave writes to the same file.
func lockOutput(output string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, failures.Wrap(failures.ErrOutput, "preprocess", "create output directory", filepath.Dir(output), err)
	}
	lockPath := output + LockSuffix
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, failures.Wrap(failures.ErrOutput, "preprocess", "acquire lock", lockPath, err)
	}
	if !ok {
		return nil, failures.Wrap(failures.ErrLocked, "preprocess", "acquire lock",
			fmt.Sprintf("another elatprep run is writing %s", output), nil)
	}
	// The lock file stays in place; removing it would let a waiting run lock
	// the unlinked inode while another run locks a fresh file.
	return func() {
		_ = lock.Unlock()
	}, nil
}

func recordHistory(ctx context.Context, path string, logger *slog.Logger, result *Result, finished time.Time, runErr error) {
	store, err := history.Open(path)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable",
			"history_open_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
		return
	}
	defer store.Close()

	// Record even when the run was canceled.
	ctx = context.WithoutCancel(ctx)
	if err := store.RecordRun(ctx, historyRun(result, finished, runErr)); err != nil {
		logging.WarnWithContext(logger, "failed to record run history",
			"history_write_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
		return
	}
	logger.Debug("run recorded", logging.String(logging.FieldPath, path))
}

func historyRun(result *Result, finished time.Time, runErr error) history.Run {
	run := history.Run{
		ID:         result.RunID,
		StartedAt:  result.StartedAt,
		FinishedAt: finished,
		Status:     history.StatusSucceeded,
		DryRun:     result.DryRun,
		Input:      result.Input,
		Output:     result.Output,
		VideoDir:   result.VideoDir,
		Total:      result.Report.Total,
		Videos:     result.Report.Videos(),
		Changed:    result.Report.Changed(),
		Skipped:    len(result.Report.Skipped),
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		if errors.Is(runErr, context.Canceled) {
			run.Status = history.StatusCanceled
		}
		run.ErrorKind = failures.Kind(runErr)
		run.Error = runErr.Error()
		// Nothing was written, so per-entry changes are not kept.
		return run
	}
	for _, rename := range result.Report.Renamed {
		run.Renames = append(run.Renames, history.Rename{
			Key:           rename.Key,
			ComponentID:   rename.ComponentID,
			Previous:      rename.Previous,
			HadPrevious:   rename.HadPrevious,
			DisplayName:   rename.DisplayName,
			ClientVideoID: rename.RawID,
			Descriptor:    rename.Descriptor,
		})
	}
	for _, skip := range result.Report.Skipped {
		run.Skips = append(run.Skips, history.Skip{Key: skip.Key, Reason: skip.Reason})
	}
	return run
}
