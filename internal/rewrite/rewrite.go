package rewrite

import (
	"context"
	"errors"
	"log/slog"

	"elatprep/internal/descriptor"
	"elatprep/internal/failures"
	"elatprep/internal/logging"
	"elatprep/internal/structure"
)

// Rewriter replaces video display names with the cleaned client_video_id
// from each video's descriptor.
type Rewriter struct {
	videoDir string
	logger   *slog.Logger
}

// New constructs a Rewriter reading descriptors from videoDir.
func New(videoDir string, logger *slog.Logger) *Rewriter {
	return &Rewriter{
		videoDir: videoDir,
		logger:   logging.NewComponentLogger(logger, "rewrite"),
	}
}

// Apply walks doc in key order and rewrites every video record in place.
// Malformed keys are logged and skipped. Any descriptor or record failure
// aborts the pass; doc may then hold partial changes and must not be written.
func (r *Rewriter) Apply(ctx context.Context, doc *structure.Document) (Report, error) {
	logger := logging.WithContext(ctx, r.logger)
	report := Report{Total: doc.Len(), Renamed: []Rename{}, Skipped: []Skip{}}

	for _, raw := range doc.Keys() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		key, err := structure.ParseKey(raw)
		if err != nil {
			logging.WarnWithContext(logger, "skipping malformed key",
				"malformed_key",
				logging.String(logging.FieldKey, raw),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "composite keys need at least three '@'-separated segments"),
				logging.String(logging.FieldImpact, "entry copied to output unchanged"),
			)
			report.Skipped = append(report.Skipped, Skip{Key: raw, Reason: err.Error()})
			continue
		}

		record, err := doc.Record(raw)
		if err != nil {
			return report, failures.Wrap(nil, "rewrite", "read record", "", err)
		}
		if !record.IsVideo() {
			report.NonVideo++
			continue
		}

		rename, err := r.rewriteVideo(logger, key, record)
		if err != nil {
			return report, err
		}
		report.Renamed = append(report.Renamed, rename)
	}

	logger.Info("display names rewritten",
		logging.Int("entries", report.Total),
		logging.Int("videos", report.Videos()),
		logging.Int("changed", report.Changed()),
		logging.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

func (r *Rewriter) rewriteVideo(logger *slog.Logger, key structure.Key, record structure.Record) (Rename, error) {
	componentID := key.ComponentID()
	logger = logger.With(
		logging.String(logging.FieldKey, key.Raw),
		logging.String(logging.FieldComponentID, componentID),
	)

	desc, err := descriptor.Read(r.videoDir, componentID)
	if err != nil {
		logger.Error("descriptor lookup failed",
			logging.String(logging.FieldEventType, "descriptor_failed"),
			logging.String(logging.FieldErrorHint, descriptorHint(err)),
			logging.Error(err),
		)
		return Rename{}, failures.Wrap(nil, "rewrite", "read descriptor", "key "+key.Raw, err)
	}

	name := descriptor.CleanVideoID(desc.ClientVideoID)
	if name == "" {
		logging.WarnWithContext(logger, "cleaned video id is empty",
			"empty_display_name",
			logging.String("client_video_id", desc.ClientVideoID),
			logging.String(logging.FieldPath, desc.Path),
			logging.String(logging.FieldErrorHint, "check client_video_id in the descriptor"),
			logging.String(logging.FieldImpact, "display_name set to an empty string"),
		)
	}

	previous, hadPrevious := record.DisplayName()
	if err := record.SetDisplayName(key.Raw, name); err != nil {
		return Rename{}, failures.Wrap(nil, "rewrite", "set display name", "", err)
	}
	logger.Debug("display name rewritten",
		logging.String("previous", previous),
		logging.String("display_name", name),
		logging.String(logging.FieldPath, desc.Path),
	)
	return Rename{
		Key:         key.Raw,
		ComponentID: componentID,
		Previous:    previous,
		HadPrevious: hadPrevious,
		DisplayName: name,
		RawID:       desc.ClientVideoID,
		Descriptor:  desc.Path,
	}, nil
}

func descriptorHint(err error) string {
	switch {
	case errors.Is(err, failures.ErrMissingDescriptor):
		return "export the video descriptors into video_dir or fix the course structure"
	case errors.Is(err, failures.ErrDescriptorParse):
		return "the descriptor is not well-formed XML; re-export it"
	case errors.Is(err, failures.ErrMissingIdentifier):
		return "the descriptor's first child element needs a non-empty client_video_id"
	default:
		return "check video_dir permissions"
	}
}
