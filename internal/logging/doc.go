// Package logging assembles structured slog loggers used by the preprocessor.
//
// It owns the console and JSON handlers, level and output plumbing, the
// standardized field keys (component, run_id, key, component_id, path), and
// context helpers that tag every line of a run with its run identifier. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
