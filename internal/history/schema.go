package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ledgerVersion is stored in PRAGMA user_version. Bump it whenever
// schema.sql changes incompatibly.
const ledgerVersion = 1

// ErrSchemaMismatch indicates the ledger was written by an incompatible
// version of elatprep.
var ErrSchemaMismatch = errors.New("history ledger version mismatch")

// initSchema creates the ledger tables in an empty database and refuses
// files whose user_version belongs to another ledger layout. A database
// that has tables but no version is not a ledger.
func (s *Store) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read ledger version: %w", err)
	}

	switch version {
	case ledgerVersion:
		return nil
	case 0:
		var tables int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table'",
		).Scan(&tables); err != nil {
			return fmt.Errorf("inspect %s: %w", s.path, err)
		}
		if tables > 0 {
			return fmt.Errorf("%w: %s is not an elatprep history database", ErrSchemaMismatch, s.path)
		}
		return s.createLedger(ctx)
	default:
		return fmt.Errorf("%w: %s has ledger version %d, this build reads version %d; set [history] path to a new file or remove the old ledger",
			ErrSchemaMismatch, s.path, version, ledgerVersion)
	}
}

func (s *Store) createLedger(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create ledger tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", ledgerVersion)); err != nil {
		return fmt.Errorf("stamp ledger version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tables: %w", err)
	}
	return nil
}
