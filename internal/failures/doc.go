// Package failures classifies preprocessing errors.
//
// Every fatal condition is tagged with one of the sentinel kinds declared here
// (configuration, input, structure parse, descriptor lookup, identifier,
// integrity, output, lock). Callers test kinds with errors.Is and the CLI maps
// them to distinct process exit codes through ExitCode.
package failures
