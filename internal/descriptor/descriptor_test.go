package descriptor_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elatprep/internal/descriptor"
	"elatprep/internal/failures"
)

func writeDescriptor(t *testing.T, dir, id, body string) string {
	t.Helper()
	path := filepath.Join(dir, id+".xml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return path
}

func TestReadReturnsRawIdentifier(t *testing.T) {
	dir := t.TempDir()
	path := writeDescriptor(t, dir, "abc123", `<?xml version="1.0"?>
<video display_name="Old">
  <encoded_video client_video_id="lecture1intro.mp4" url="x"/>
  <encoded_video client_video_id="ignored.mp4"/>
</video>
`)

	desc, err := descriptor.Read(dir, "abc123")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if desc.ClientVideoID != "lecture1intro.mp4" {
		t.Fatalf("expected first child's id, got %q", desc.ClientVideoID)
	}
	if desc.Path != path || desc.Root != "video" || desc.Child != "encoded_video" {
		t.Fatalf("unexpected descriptor %+v", desc)
	}
}

func TestReadMissingDescriptor(t *testing.T) {
	dir := t.TempDir()
	_, err := descriptor.Read(dir, "nope")
	var missing *descriptor.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if missing.ComponentID != "nope" || missing.Path != filepath.Join(dir, "nope.xml") {
		t.Fatalf("unexpected error fields %+v", missing)
	}
	if !errors.Is(err, failures.ErrMissingDescriptor) {
		t.Fatalf("expected ErrMissingDescriptor, got %v", err)
	}
}

func TestReadDirectoryIsMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "vid.xml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err := descriptor.Read(dir, "vid")
	if !errors.Is(err, failures.ErrMissingDescriptor) {
		t.Fatalf("expected ErrMissingDescriptor for directory, got %v", err)
	}
}

func TestReadParseFailures(t *testing.T) {
	cases := map[string]string{
		"unterminated":     `<video><encoded_video client_video_id="a.mp4"/>`,
		"mismatched":       `<video><a client_video_id="x"></b></video>`,
		"empty":            ``,
		"multiple roots":   `<video><a client_video_id="x"/></video><video/>`,
		"trailing text":    `<video><a client_video_id="x"/></video>junk`,
		"unknown encoding": `<?xml version="1.0" encoding="no-such-charset"?><video><a client_video_id="x"/></video>`,
		"dtd entity":       `<?xml version="1.0"?><!DOCTYPE video [<!ENTITY e "zz">]><video><a client_video_id="&e;.mp4"/></video>`,
		"bom only":         "\xef\xbb\xbf",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeDescriptor(t, dir, "vid", body)
			_, err := descriptor.Read(dir, "vid")
			var parseErr *descriptor.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if parseErr.Path != path {
				t.Fatalf("expected path %s, got %s", path, parseErr.Path)
			}
			if !errors.Is(err, failures.ErrDescriptorParse) {
				t.Fatalf("expected ErrDescriptorParse, got %v", err)
			}
		})
	}
}

func TestReadIdentifierFailures(t *testing.T) {
	cases := map[string]struct {
		body   string
		reason string
	}{
		"no child":           {`<video display_name="x"/>`, "no child elements"},
		"attribute missing":  {`<video><encoded_video url="x"/></video>`, "missing"},
		"attribute empty":    {`<video><encoded_video client_video_id=""/></video>`, "empty"},
		"namespaced only":    {`<video xmlns:e="urn:e"><encoded_video e:client_video_id="a"/></video>`, "missing"},
		"second child has":   {`<video><first/><second client_video_id="a"/></video>`, "missing"},
		"root attribute has": {`<video client_video_id="a"><first/></video>`, "missing"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeDescriptor(t, dir, "vid", tc.body)
			_, err := descriptor.Read(dir, "vid")
			var idErr *descriptor.IdentifierError
			if !errors.As(err, &idErr) {
				t.Fatalf("expected IdentifierError, got %v", err)
			}
			if !strings.Contains(idErr.Reason, tc.reason) {
				t.Fatalf("expected reason containing %q, got %q", tc.reason, idErr.Reason)
			}
			if !errors.Is(err, failures.ErrMissingIdentifier) {
				t.Fatalf("expected ErrMissingIdentifier, got %v", err)
			}
		})
	}
}

func TestReadSkipsByteOrderMark(t *testing.T) {
	cases := map[string]string{
		"with declaration": "\xef\xbb\xbf<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<video><encoded_video client_video_id=\"lecture1intro.mp4\"/></video>\n",
		"bare root":        "\xef\xbb\xbf<video><encoded_video client_video_id=\"lecture1intro.mp4\"/></video>",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeDescriptor(t, dir, "vid", body)
			desc, err := descriptor.Read(dir, "vid")
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if desc.ClientVideoID != "lecture1intro.mp4" {
				t.Fatalf("unexpected id %q", desc.ClientVideoID)
			}
		})
	}
}

func TestParseShortDocumentsWithoutBOM(t *testing.T) {
	desc, err := descriptor.Parse(strings.NewReader(`<a><b client_video_id="x"/></a>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if desc.ClientVideoID != "x" {
		t.Fatalf("unexpected id %q", desc.ClientVideoID)
	}
}

func TestParseDecodesDeclaredCharset(t *testing.T) {
	// "Vidéo" in ISO-8859-1.
	body := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><video><v client_video_id=\"Vid\xe9o.mp4\"/></video>"
	desc, err := descriptor.Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if desc.ClientVideoID != "Vidéo.mp4" {
		t.Fatalf("expected decoded id, got %q", desc.ClientVideoID)
	}
}

func TestParseIgnoresCommentsAndWhitespaceAroundRoot(t *testing.T) {
	body := "<!-- header -->\n<video>\n  <!-- c -->\n  <v client_video_id=\"a\"/>\n</video>\n\n"
	desc, err := descriptor.Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if desc.ClientVideoID != "a" {
		t.Fatalf("unexpected id %q", desc.ClientVideoID)
	}
}

func TestCleanVideoID(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"lecture1intro.mp4", "lecture1intro"},
		{"clip9.m", "clip9"},
		{"clip9.mp", "clip9"},
		{"plain", "plain"},
		{"a.m.mp", "a"},
		{"a.mp.mp4", "a"},
		{"a.mp4.mp4", "a.mp4"},
		{"a.mkv", "a.mkv"},
		{".mp4", ""},
		{"A.MP4", "A.MP4"},
	}
	for _, tc := range cases {
		if got := descriptor.CleanVideoID(tc.raw); got != tc.want {
			t.Errorf("CleanVideoID(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
