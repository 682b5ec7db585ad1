package structure_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elatprep/internal/failures"
	"elatprep/internal/structure"
)

func TestParseKey(t *testing.T) {
	key, err := structure.ParseKey("block-v1:Org+Course+Run@video+block@abc123")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if key.ComponentID() != "abc123" {
		t.Fatalf("unexpected component id %q", key.ComponentID())
	}
	if len(key.Segments) != 3 {
		t.Fatalf("unexpected segments %v", key.Segments)
	}

	key, err = structure.ParseKey("a@b@c@d")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if key.ComponentID() != "c" {
		t.Fatalf("expected segment 2 for longer keys, got %q", key.ComponentID())
	}
}

func TestParseKeyMalformed(t *testing.T) {
	for _, raw := range []string{"", "course-root", "block-v1:Org+C+R@course"} {
		_, err := structure.ParseKey(raw)
		var keyErr *structure.KeyError
		if !errors.As(err, &keyErr) {
			t.Fatalf("ParseKey(%q): expected *KeyError, got %v", raw, err)
		}
		if keyErr.Key != raw {
			t.Fatalf("unexpected key in error: %q", keyErr.Key)
		}
		if !strings.Contains(err.Error(), "malformed key") {
			t.Fatalf("unexpected message %q", err.Error())
		}
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", "empty"},
		{"array", `[1, 2]`, "an array"},
		{"null", `null`, "null"},
		{"syntax", `{"a": }`, "invalid character"},
		{"trailing", `{"a": {}} {"b": {}}`, "after the top-level object"},
		{"invalid utf8", "{\"a\": \"\xff\"}", "UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := structure.Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestLoadClassifiesFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := structure.Load(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, failures.ErrInput) {
		t.Fatalf("expected input error for missing file, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = structure.Load(bad)
	if !errors.Is(err, failures.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !strings.Contains(err.Error(), bad) {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestDocumentRecordAccessors(t *testing.T) {
	doc, err := structure.Parse([]byte(`{
		"b@video@v1": {"category": "video", "metadata": {"display_name": "Video"}},
		"a@html@h1": {"category": "html", "metadata": {}},
		"c@x@scalar": 7
	}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Len() != 3 {
		t.Fatalf("unexpected length %d", doc.Len())
	}
	keys := doc.Keys()
	if strings.Join(keys, ",") != "a@html@h1,b@video@v1,c@x@scalar" {
		t.Fatalf("keys not sorted: %v", keys)
	}

	video, err := doc.Record("b@video@v1")
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if !video.IsVideo() {
		t.Fatal("expected video record")
	}
	if name, ok := video.DisplayName(); !ok || name != "Video" {
		t.Fatalf("unexpected display name %q ok=%v", name, ok)
	}
	if err := video.SetDisplayName("b@video@v1", "lecture1"); err != nil {
		t.Fatalf("SetDisplayName returned error: %v", err)
	}
	if name, _ := video.DisplayName(); name != "lecture1" {
		t.Fatalf("display name not updated: %q", name)
	}

	html, _ := doc.Record("a@html@h1")
	if html.IsVideo() {
		t.Fatal("html record should not be a video")
	}

	_, err = doc.Record("c@x@scalar")
	var recErr *structure.RecordError
	if !errors.As(err, &recErr) || !errors.Is(err, failures.ErrIntegrity) {
		t.Fatalf("expected integrity RecordError, got %v", err)
	}
}

func TestSetDisplayNameRequiresMetadataObject(t *testing.T) {
	missing := structure.Record{"category": "video"}
	if err := missing.SetDisplayName("k", "x"); !errors.Is(err, failures.ErrIntegrity) {
		t.Fatalf("expected integrity error for missing metadata, got %v", err)
	}
	wrongType := structure.Record{"category": "video", "metadata": "oops"}
	err := wrongType.SetDisplayName("k", "x")
	if !errors.Is(err, failures.ErrIntegrity) || !strings.Contains(err.Error(), "a string") {
		t.Fatalf("expected integrity error naming the type, got %v", err)
	}
	noName := structure.Record{"category": "video", "metadata": map[string]any{}}
	if err := noName.SetDisplayName("k", "x"); err != nil {
		t.Fatalf("missing display_name key should be created, got %v", err)
	}
	if name, ok := noName.DisplayName(); !ok || name != "x" {
		t.Fatalf("unexpected display name %q ok=%v", name, ok)
	}
}

func TestCategoryIgnoresNonStrings(t *testing.T) {
	if (structure.Record{"category": 5}).IsVideo() {
		t.Fatal("numeric category should not be treated as video")
	}
	if (structure.Record{}).Category() != "" {
		t.Fatal("absent category should be empty")
	}
}

func TestMarshalSortsIndentsAndPreservesText(t *testing.T) {
	doc, err := structure.Parse([]byte(`{"z@v@2":{"metadata":{"display_name":"Vidéo <intro> & more","b":1.50,"a":[]},"category":"video"},"a@v@1":{"n":1e3,"empty":{}}}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	data, err := structure.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	want := `{
  "a@v@1": {
    "empty": {},
    "n": 1e3
  },
  "z@v@2": {
    "category": "video",
    "metadata": {
      "a": [],
      "b": 1.50,
      "display_name": "Vidéo <intro> & more"
    }
  }
}
`
	if string(data) != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteIsIdempotentAndAtomic(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "out.json")
	doc, err := structure.Parse([]byte(`{"b@x@1":{"category":"html"},"a@x@2":{"category":"problem"}}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if err := structure.Write(out, doc); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	reloaded, err := structure.Load(out)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := structure.Write(out, reloaded); err != nil {
		t.Fatalf("second Write returned error: %v", err)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("output changed across round trips:\n%s\n---\n%s", first, second)
	}
}

func TestWriteToDirectoryIsOutputError(t *testing.T) {
	dir := t.TempDir()
	err := structure.Write(dir, structure.NewDocument(nil))
	if !errors.Is(err, failures.ErrOutput) {
		t.Fatalf("expected output error, got %v", err)
	}
}
