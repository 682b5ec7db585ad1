// Package config loads, normalizes, and validates elatprep configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, honours ELATPREP_* environment variables and
// a .env file in the working directory, and layers command-line overrides on
// top. Validate checks structural settings; ValidateRun checks that the
// input document, descriptor directory, and output location are usable
// before a run touches any of them.
package config
