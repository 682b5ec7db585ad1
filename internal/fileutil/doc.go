// Package fileutil holds small filesystem helpers: atomic replacement of an
// output file and regular-file checks.
package fileutil
