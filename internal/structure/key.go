package structure

import (
	"fmt"
	"strings"
)

// KeySeparator splits a composite key into its segments.
const KeySeparator = "@"

// minKeySegments is the number of segments a key needs before it names a
// component id.
const minKeySegments = 3

// Key is a parsed composite key such as
// "block-v1:Org+Course+Run@video+block@abc123".
type Key struct {
	Raw      string
	Segments []string
}

// KeyError reports a key with too few segments. It is not fatal: callers
// warn and leave the entry unchanged.
type KeyError struct {
	Key      string
	Segments int
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("malformed key %q: expected at least %d %q-separated segments, got %d",
		e.Key, minKeySegments, KeySeparator, e.Segments)
}

// ParseKey splits raw on '@'. Keys with fewer than three segments return a
// *KeyError.
func ParseKey(raw string) (Key, error) {
	segments := strings.Split(raw, KeySeparator)
	if len(segments) < minKeySegments {
		return Key{}, &KeyError{Key: raw, Segments: len(segments)}
	}
	return Key{Raw: raw, Segments: segments}, nil
}

// ComponentID returns segment 2, the id that names the descriptor file.
func (k Key) ComponentID() string {
	if len(k.Segments) < minKeySegments {
		return ""
	}
	return k.Segments[2]
}

func (k Key) String() string { return k.Raw }
