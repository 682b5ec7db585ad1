package structure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"unicode/utf8"

	"elatprep/internal/failures"
	"elatprep/internal/fileutil"
)

// Document is a parsed course structure: composite key → component value.
type Document struct {
	entries map[string]any
}

// NewDocument wraps already-decoded entries.
func NewDocument(entries map[string]any) *Document {
	if entries == nil {
		entries = map[string]any{}
	}
	return &Document{entries: entries}
}

// Len returns the number of entries.
func (d *Document) Len() int { return len(d.entries) }

// Keys returns every key in ascending lexicographic order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for key := range d.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Record returns the entry for key as a Record. Entries that are not JSON
// objects produce a *RecordError.
func (d *Document) Record(key string) (Record, error) {
	value, ok := d.entries[key]
	if !ok {
		return nil, fmt.Errorf("no entry for key %q", key)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &RecordError{Key: key, Reason: fmt.Sprintf("entry is %s, expected an object", jsonKind(value))}
	}
	return Record(obj), nil
}

// Load reads and parses the structure document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failures.Wrap(failures.ErrInput, "load", "read structure document", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, failures.Wrap(failures.ErrParse, "load", "parse structure document", path, err)
	}
	return doc, nil
}

// Parse decodes a structure document. The top level must be a single JSON
// object; numbers keep their literal text.
func Parse(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("document is not valid UTF-8")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document is empty")
		}
		return nil, err
	}
	entries, ok := top.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top level is %s, expected an object", jsonKind(top))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level object")
	}
	return &Document{entries: entries}, nil
}

// Encode writes the document as JSON with keys sorted at every level,
// two-space indentation, literal non-ASCII text, and a trailing newline.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.entries)
}

// Marshal returns the encoded form of doc.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes doc and atomically replaces path with the result. On error
// any previous file at path is left untouched.
func Write(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return failures.Wrap(failures.ErrOutput, "write", "encode structure document", "", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return failures.Wrap(failures.ErrOutput, "write", "save structure document", path, err)
	}
	return nil
}
