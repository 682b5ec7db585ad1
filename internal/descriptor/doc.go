// Package descriptor reads per-video XML descriptors.
//
// Each video component id has a descriptor at <video_dir>/<component_id>.xml
// whose root element's first child carries a client_video_id attribute. Read
// locates and parses that file; CleanVideoID turns the raw attribute into the
// display name written back into the structure document.
//
// Errors are typed so callers can report the component id and path:
// *MissingError, *ParseError and *IdentifierError match the corresponding
// failures kinds with errors.Is.
package descriptor
