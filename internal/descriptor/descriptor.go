package descriptor

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"elatprep/internal/failures"
	"elatprep/internal/fileutil"
)

// Extension is appended to a component id to name its descriptor file.
const Extension = ".xml"

// IdentifierAttr is the attribute on the root's first child element that
// holds the source video identifier.
const IdentifierAttr = "client_video_id"

// Descriptor is the part of a video descriptor the preprocessor needs.
type Descriptor struct {
	Path string
	// Root and Child are the local names of the root element and its first
	// child element.
	Root  string
	Child string
	// ClientVideoID is the raw attribute value, before cleaning.
	ClientVideoID string
}

// PathFor returns <videoDir>/<componentID>.xml.
func PathFor(videoDir, componentID string) string {
	return filepath.Join(videoDir, componentID+Extension)
}

// Read locates, opens, and parses the descriptor for componentID. A missing
// file (or a non-regular file at the path) yields *MissingError.
func Read(videoDir, componentID string) (*Descriptor, error) {
	path := PathFor(videoDir, componentID)
	ok, err := fileutil.IsRegularFile(path)
	if err != nil {
		return nil, failures.Wrap(failures.ErrInput, "descriptor", "stat", path, err)
	}
	if !ok {
		return nil, &MissingError{ComponentID: componentID, Path: path}
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingError{ComponentID: componentID, Path: path}
		}
		return nil, failures.Wrap(failures.ErrInput, "descriptor", "open", path, err)
	}
	defer file.Close()

	desc, err := Parse(bufio.NewReader(file))
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		var idErr *IdentifierError
		if errors.As(err, &idErr) {
			idErr.Path = path
		}
		return nil, err
	}
	desc.Path = path
	return desc, nil
}

// Parse reads a whole descriptor document from r. The document must be
// well-formed with a single root element; the identifier is taken from the
// first child element of the root. Errors are *ParseError or
// *IdentifierError with an empty Path. A leading UTF-8 byte order mark is
// skipped.
func Parse(r io.Reader) (*Descriptor, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	if err := skipBOM(br); err != nil {
		return nil, &ParseError{Err: err}
	}
	dec := xml.NewDecoder(br)
	dec.CharsetReader = charsetReader

	var (
		desc      Descriptor
		depth     int
		rootSeen  bool
		rootDone  bool
		childSeen bool
		hasAttr   bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if rootDone {
				return nil, &ParseError{Err: errors.New("unexpected element after the root element")}
			}
			switch depth {
			case 0:
				rootSeen = true
				desc.Root = t.Name.Local
			case 1:
				if !childSeen {
					childSeen = true
					desc.Child = t.Name.Local
					desc.ClientVideoID, hasAttr = attr(t.Attr, IdentifierAttr)
				}
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootDone = true
			}
		case xml.CharData:
			if depth == 0 && len(trimSpace(t)) > 0 {
				return nil, &ParseError{Err: errors.New("text outside the root element")}
			}
		}
	}

	if !rootSeen {
		return nil, &ParseError{Err: errors.New("no root element")}
	}
	if !rootDone {
		return nil, &ParseError{Err: io.ErrUnexpectedEOF}
	}
	if !childSeen {
		return nil, &IdentifierError{Reason: fmt.Sprintf("root element <%s> has no child elements", desc.Root)}
	}
	if !hasAttr {
		return nil, &IdentifierError{Reason: fmt.Sprintf("missing %q attribute on <%s>", IdentifierAttr, desc.Child)}
	}
	if desc.ClientVideoID == "" {
		return nil, &IdentifierError{Reason: fmt.Sprintf("empty %q attribute on <%s>", IdentifierAttr, desc.Child)}
	}
	return &desc, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM discards a UTF-8 byte order mark; encoding/xml would otherwise
// report it as text before the root element.
func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return err
	}
	if bytes.Equal(head, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}

// attr finds an attribute by local name without a namespace prefix.
func attr(attrs []xml.Attr, local string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func trimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isXMLSpace(b[start]) {
		start++
	}
	for end > start && isXMLSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isXMLSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
