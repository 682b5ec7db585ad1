package structure

import (
	"fmt"

	"elatprep/internal/failures"
)

// Record field names.
const (
	FieldCategory    = "category"
	FieldMetadata    = "metadata"
	FieldDisplayName = "display_name"
)

// CategoryVideo marks the records whose display names are rewritten.
const CategoryVideo = "video"

// Record is one component entry. Values are the generic JSON decoding of the
// entry (numbers as json.Number) so untouched fields round-trip.
type Record map[string]any

// RecordError reports a record whose shape prevents it from being processed.
// It matches failures.ErrIntegrity.
type RecordError struct {
	Key    string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %q: %s", e.Key, e.Reason)
}

func (e *RecordError) Unwrap() error { return failures.ErrIntegrity }

// Category returns the record's category, or "" when absent or not a string.
func (r Record) Category() string {
	value, _ := r[FieldCategory].(string)
	return value
}

// IsVideo reports whether the record is a video component.
func (r Record) IsVideo() bool {
	return r.Category() == CategoryVideo
}

// DisplayName returns metadata.display_name when present as a string.
func (r Record) DisplayName() (string, bool) {
	meta, ok := r[FieldMetadata].(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := meta[FieldDisplayName].(string)
	return name, ok
}

// SetDisplayName overwrites metadata.display_name. A record without a
// metadata object is an integrity failure; no default structure is invented.
func (r Record) SetDisplayName(key, name string) error {
	raw, present := r[FieldMetadata]
	if !present {
		return &RecordError{Key: key, Reason: "video record has no metadata object"}
	}
	meta, ok := raw.(map[string]any)
	if !ok {
		return &RecordError{Key: key, Reason: fmt.Sprintf("metadata is %s, expected an object", jsonKind(raw))}
	}
	meta[FieldDisplayName] = name
	return nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
