// Package preprocess drives one end-to-end run: validate paths, lock the
// output, load the structure document, rewrite video display names, and
// write the result atomically.
//
// Run never leaves a partial or modified output on failure. Optional run
// history is written to the SQLite ledger in internal/history.
package preprocess
