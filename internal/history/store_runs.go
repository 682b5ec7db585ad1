package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by GetRun for an unknown id.
var ErrNotFound = errors.New("run not found")

const runColumns = `id, started_at, finished_at, status, dry_run, input_path, output_path, video_dir,
    total_entries, video_entries, changed_entries, skipped_entries, error_kind, error_message`

// RecordRun stores run with its renames and skips in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		return s.recordRun(ctx, run)
	})
}

func (s *Store) recordRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		string(run.Status),
		boolToInt(run.DryRun),
		run.Input,
		run.Output,
		run.VideoDir,
		run.Total,
		run.Videos,
		run.Changed,
		run.Skipped,
		nullableString(run.ErrorKind),
		nullableString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, rename := range run.Renames {
		var previous any
		if rename.HadPrevious {
			previous = rename.Previous
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO renames (run_id, position, entry_key, component_id, previous, display_name, client_video_id, descriptor_path)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, rename.Key, rename.ComponentID, previous, rename.DisplayName, rename.ClientVideoID, rename.Descriptor,
		); err != nil {
			return fmt.Errorf("insert rename %s: %w", rename.Key, err)
		}
	}
	for i, skip := range run.Skips {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skips (run_id, position, entry_key, reason) VALUES (?, ?, ?, ?)`,
			run.ID, i, skip.Key, skip.Reason,
		); err != nil {
			return fmt.Errorf("insert skip %s: %w", skip.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	runs := make([]Run, 0)
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		runs = runs[:0]
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return err
			}
			runs = append(runs, *run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun loads one run with its renames and skips.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)

	var run *Run
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
		var scanErr error
		run, scanErr = scanRun(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	if err := s.loadRenames(ctx, run); err != nil {
		return nil, err
	}
	if err := s.loadSkips(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) loadRenames(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_key, component_id, previous, display_name, client_video_id, descriptor_path
         FROM renames WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("query renames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rename   Rename
			previous sql.NullString
		)
		if err := rows.Scan(&rename.Key, &rename.ComponentID, &previous, &rename.DisplayName,
			&rename.ClientVideoID, &rename.Descriptor); err != nil {
			return fmt.Errorf("scan rename: %w", err)
		}
		rename.Previous = previous.String
		rename.HadPrevious = previous.Valid
		run.Renames = append(run.Renames, rename)
	}
	return rows.Err()
}

func (s *Store) loadSkips(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_key, reason FROM skips WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("query skips: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var skip Skip
		if err := rows.Scan(&skip.Key, &skip.Reason); err != nil {
			return fmt.Errorf("scan skip: %w", err)
		}
		run.Skips = append(run.Skips, skip)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt string
		status     string
		dryRun     int
		errorKind  sql.NullString
		errorMsg   sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&status,
		&dryRun,
		&run.Input,
		&run.Output,
		&run.VideoDir,
		&run.Total,
		&run.Videos,
		&run.Changed,
		&run.Skipped,
		&errorKind,
		&errorMsg,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	run.Status = Status(status)
	run.DryRun = dryRun != 0
	run.ErrorKind = errorKind.String
	run.Error = errorMsg.String
	return &run, nil
}

// timeLayout is fixed width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
