package failures

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrInput             = errors.New("input error")
	ErrParse             = errors.New("structure parse error")
	ErrMissingDescriptor = errors.New("missing descriptor")
	ErrDescriptorParse   = errors.New("descriptor parse error")
	ErrMissingIdentifier = errors.New("missing identifier")
	ErrIntegrity         = errors.New("integrity error")
	ErrOutput            = errors.New("output error")
	ErrLocked            = errors.New("output locked")
)

// Exit codes returned by the CLI for each failure kind.
const (
	ExitOK                = 0
	ExitUnknown           = 1
	ExitConfiguration     = 2
	ExitInput             = 3
	ExitParse             = 4
	ExitMissingDescriptor = 5
	ExitDescriptorParse   = 6
	ExitMissingIdentifier = 7
	ExitIntegrity         = 8
	ExitOutput            = 9
	ExitLocked            = 10
	ExitCanceled          = 130
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		if err == nil {
			return errors.New(detail)
		}
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

var exitCodes = []struct {
	marker error
	code   int
}{
	{ErrConfiguration, ExitConfiguration},
	{ErrInput, ExitInput},
	{ErrParse, ExitParse},
	{ErrMissingDescriptor, ExitMissingDescriptor},
	{ErrDescriptorParse, ExitDescriptorParse},
	{ErrMissingIdentifier, ExitMissingIdentifier},
	{ErrIntegrity, ExitIntegrity},
	{ErrOutput, ExitOutput},
	{ErrLocked, ExitLocked},
}

// ExitCode maps an error to the process exit status. Nil maps to ExitOK.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	for _, entry := range exitCodes {
		if errors.Is(err, entry.marker) {
			return entry.code
		}
	}
	return ExitUnknown
}

// Kind returns a short machine-readable label for the failure kind.
func Kind(err error) string {
	switch ExitCode(err) {
	case ExitOK:
		return ""
	case ExitConfiguration:
		return "configuration"
	case ExitInput:
		return "input_io"
	case ExitParse:
		return "structure_parse"
	case ExitMissingDescriptor:
		return "missing_descriptor"
	case ExitDescriptorParse:
		return "descriptor_parse"
	case ExitMissingIdentifier:
		return "missing_identifier"
	case ExitIntegrity:
		return "integrity"
	case ExitOutput:
		return "output_io"
	case ExitLocked:
		return "locked"
	case ExitCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "preprocess failure"
	}
	return strings.Join(parts, ": ")
}
