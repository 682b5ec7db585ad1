// Package main hosts the elatprep CLI entrypoint and command graph.
//
// The root command (and its "run" alias) drives internal/preprocess; "config"
// scaffolds and inspects configuration and "history" reads the run ledger.
// Errors are mapped to exit codes by failure kind in main.
package main
