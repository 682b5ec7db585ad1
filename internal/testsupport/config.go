package testsupport

import (
	"path/filepath"
	"testing"

	"elatprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths point into a unique temp directory:
// <base>/course_structure.json, <base>/out/course_structure.json and
// <base>/video. Nothing is created on disk; use Course to write fixtures.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Input = filepath.Join(base, "course_structure.json")
	cfgVal.Paths.Output = filepath.Join(base, "out", "course_structure.json")
	cfgVal.Paths.VideoDir = filepath.Join(base, "video")
	cfgVal.History.Path = filepath.Join(base, "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHistory enables the run ledger at <base>/history.db.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithOutput overrides the output path.
func WithOutput(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.Output = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Input)
}
