// Package structure reads and writes course structure documents.
//
// A structure document is a JSON object keyed by composite keys of the form
// "<block>@<block_type>@<component_id>"; each value is a component record
// with a category and a metadata object. Load and Parse keep every value
// intact (numbers keep their literal text) so that records the preprocessor
// does not touch are written back unchanged. Write sorts keys at every level,
// indents with two spaces, keeps non-ASCII text literal, and replaces the
// destination atomically.
package structure
