package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := lookupEnv(EnvInput); ok {
		c.Paths.Input = value
	}
	if value, ok := lookupEnv(EnvOutput); ok {
		c.Paths.Output = value
	}
	if value, ok := lookupEnv(EnvVideoDir); ok {
		c.Paths.VideoDir = value
	}
	if value, ok := lookupEnv(EnvLogLevel); ok {
		c.Logging.Level = value
	}
	if value, ok := lookupEnv(EnvLogFormat); ok {
		c.Logging.Format = value
	}
	if value, ok := lookupEnv(EnvHistory); ok {
		if enabled, err := strconv.ParseBool(value); err == nil {
			c.History.Enabled = enabled
		}
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return c.normalizeHistory()
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Input, err = expandPath(strings.TrimSpace(c.Paths.Input)); err != nil {
		return fmt.Errorf("paths.input: %w", err)
	}
	if c.Paths.Output, err = expandPath(strings.TrimSpace(c.Paths.Output)); err != nil {
		return fmt.Errorf("paths.output: %w", err)
	}
	if c.Paths.VideoDir, err = expandPath(strings.TrimSpace(c.Paths.VideoDir)); err != nil {
		return fmt.Errorf("paths.video_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		if expanded, err := expandPath(c.Logging.File); err == nil {
			c.Logging.File = expanded
		}
	}
}

func (c *Config) normalizeHistory() error {
	c.History.Path = strings.TrimSpace(c.History.Path)
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}
