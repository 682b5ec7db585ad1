package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"elatprep/internal/failures"
)

// jsonTimeLayout keeps millisecond precision so lines from one run order correctly.
const jsonTimeLayout = "2006-01-02T15:04:05.000Z07:00"

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: jsonRunAttr,
	})
}

// jsonRunAttr shapes top-level attributes for log shippers: "ts" in UTC,
// lower-case levels, "file:line" sources, and errors expanded into an object
// carrying the failure kind and the exit code the run would end with.
func jsonRunAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(jsonTimeLayout))
		}
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(filepath.Base(src.File) + ":" + strconv.Itoa(src.Line))
		}
	case "error":
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			return slog.Group("error",
				slog.String("message", err.Error()),
				slog.String("kind", failures.Kind(err)),
				slog.Int("exit_code", failures.ExitCode(err)),
			)
		}
	}
	return attr
}
