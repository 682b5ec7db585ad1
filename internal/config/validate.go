package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"elatprep/internal/failures"
)

// Validate ensures the configuration is structurally usable. It does not
// touch the filesystem; see ValidateRun for the path checks a run needs.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return failures.Wrap(failures.ErrConfiguration, "config", "", "", err)
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return failures.Wrap(failures.ErrConfiguration, "config", "", "history.path must be set when history.enabled is true", nil)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

// ValidateRun checks the three run paths before any work starts so that a
// bad invocation surfaces as a configuration error instead of a deep I/O
// failure: the input must be a readable file, the video directory a
// readable directory, and the output a non-directory path distinct from the
// input.
func (c *Config) ValidateRun() error {
	if err := c.validateRunPaths(); err != nil {
		return failures.Wrap(failures.ErrConfiguration, "config", "", "", err)
	}
	return nil
}

func (c *Config) validateRunPaths() error {
	if c.Paths.Input == "" {
		return errors.New("paths.input must be set (--input or " + EnvInput + ")")
	}
	if c.Paths.Output == "" {
		return errors.New("paths.output must be set (--output or " + EnvOutput + ")")
	}
	if c.Paths.VideoDir == "" {
		return errors.New("paths.video_dir must be set (--video-dir or " + EnvVideoDir + ")")
	}

	inputInfo, err := os.Stat(c.Paths.Input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("input structure document %s does not exist", c.Paths.Input)
		}
		return fmt.Errorf("stat input %s: %w", c.Paths.Input, err)
	}
	if inputInfo.IsDir() {
		return fmt.Errorf("input %s is a directory, expected a structure document", c.Paths.Input)
	}
	if err := checkAccess(c.Paths.Input, accessRead); err != nil {
		return fmt.Errorf("input %s is not readable: %w", c.Paths.Input, err)
	}

	videoInfo, err := os.Stat(c.Paths.VideoDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("video directory %s does not exist", c.Paths.VideoDir)
		}
		return fmt.Errorf("stat video directory %s: %w", c.Paths.VideoDir, err)
	}
	if !videoInfo.IsDir() {
		return fmt.Errorf("video directory %s is not a directory", c.Paths.VideoDir)
	}
	if err := checkAccess(c.Paths.VideoDir, accessRead|accessSearch); err != nil {
		return fmt.Errorf("video directory %s is not readable: %w", c.Paths.VideoDir, err)
	}

	if c.Paths.Output == c.Paths.Input {
		return fmt.Errorf("output %s must differ from input", c.Paths.Output)
	}
	outputInfo, err := os.Stat(c.Paths.Output)
	switch {
	case err == nil:
		if outputInfo.IsDir() {
			return fmt.Errorf("output %s is a directory", c.Paths.Output)
		}
		if os.SameFile(inputInfo, outputInfo) {
			return fmt.Errorf("output %s refers to the same file as input %s", c.Paths.Output, c.Paths.Input)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat output %s: %w", c.Paths.Output, err)
	}

	if parent := nearestExistingDir(filepath.Dir(c.Paths.Output)); parent != "" {
		if err := checkAccess(parent, accessWrite|accessSearch); err != nil {
			return fmt.Errorf("output directory %s is not writable: %w", parent, err)
		}
	}
	return nil
}

// nearestExistingDir walks up from dir until it finds a directory that
// exists, since the writer creates missing parents.
func nearestExistingDir(dir string) string {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if info.IsDir() {
				return dir
			}
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
