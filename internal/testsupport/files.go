package testsupport

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteJSON marshals v and writes it to path.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	WriteFile(t, path, data)
}

// ReadJSON decodes the JSON object stored at path.
func ReadJSON(t testing.TB, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return out
}

// VideoKey returns a composite key for a video component.
func VideoKey(componentID string) string {
	return "block-v1:TestX+T101+2024@video+block@" + componentID
}

// VideoRecord returns a video entry with the given display name.
func VideoRecord(displayName string) map[string]any {
	return map[string]any{
		"category": "video",
		"metadata": map[string]any{"display_name": displayName},
		"children": []any{},
	}
}

// DescriptorXML renders a minimal descriptor whose first child carries
// clientVideoID.
func DescriptorXML(clientVideoID string) []byte {
	return fmt.Appendf(nil,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<video display_name=\"ignored\">\n  <encoded_video client_video_id=\"%s\" profile=\"desktop_mp4\"/>\n</video>\n",
		html.EscapeString(clientVideoID))
}

// Course writes fixture files for the paths in a NewConfig result.
type Course struct {
	t        testing.TB
	input    string
	videoDir string
	entries  map[string]any
}

// NewCourse starts an empty course backed by input and videoDir. The video
// directory is created immediately.
func NewCourse(t testing.TB, input, videoDir string) *Course {
	t.Helper()

	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", videoDir, err)
	}
	return &Course{t: t, input: input, videoDir: videoDir, entries: map[string]any{}}
}

// Video adds a video entry and its descriptor.
func (c *Course) Video(componentID, displayName, clientVideoID string) *Course {
	c.t.Helper()
	c.entries[VideoKey(componentID)] = VideoRecord(displayName)
	c.Descriptor(componentID, DescriptorXML(clientVideoID))
	return c
}

// Descriptor writes raw descriptor content for componentID.
func (c *Course) Descriptor(componentID string, data []byte) *Course {
	c.t.Helper()
	WriteFile(c.t, filepath.Join(c.videoDir, componentID+".xml"), data)
	return c
}

// Entry adds an arbitrary entry under key.
func (c *Course) Entry(key string, value any) *Course {
	c.entries[key] = value
	return c
}

// Write stores the structure document at the input path.
func (c *Course) Write() *Course {
	c.t.Helper()
	WriteJSON(c.t, c.input, c.entries)
	return c
}
