package descriptor

import (
	"fmt"

	"elatprep/internal/failures"
)

// MissingError reports a video component without a descriptor file.
type MissingError struct {
	ComponentID string
	Path        string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("could not find the descriptor for video %s: %s", e.ComponentID, e.Path)
}

func (e *MissingError) Unwrap() error { return failures.ErrMissingDescriptor }

// ParseError reports a descriptor that is not well-formed XML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse descriptor %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{failures.ErrDescriptorParse, e.Err} }

// IdentifierError reports a descriptor without a usable client_video_id.
type IdentifierError struct {
	Path   string
	Reason string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("descriptor %s: %s", e.Path, e.Reason)
}

func (e *IdentifierError) Unwrap() error { return failures.ErrMissingIdentifier }
