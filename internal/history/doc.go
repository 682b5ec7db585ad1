// Package history keeps a SQLite ledger of preprocessing runs.
//
// Each run row records its paths, outcome, and entry counts; renames and
// skips are stored per run so `elatprep history show` can list exactly which
// display names changed. The store follows the same busy-retry and WAL
// settings for every connection and refuses databases created with a
// different schema version.
package history
