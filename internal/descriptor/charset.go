package descriptor

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/htmlindex"
)

// charsetReader decodes descriptors that declare a non-UTF-8 encoding such as
// ISO-8859-1 or windows-1252. encoding/xml only calls it for labels other
// than UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported descriptor encoding %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
