package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"elatprep/internal/failures"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths holds the three locations a run operates on.
type Paths struct {
	Input    string `toml:"input"`
	Output   string `toml:"output"`
	VideoDir string `toml:"video_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// History controls the SQLite run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for elatprep.
//
// Configuration sections:
//   - Paths: source structure document, destination document, descriptor directory
//   - Logging: log format, level, and optional log file
//   - History: optional SQLite ledger of completed runs
type Config struct {
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`
}

// Overrides carries command-line values that take precedence over the config
// file and environment. Empty strings and nil pointers leave values unchanged.
type Overrides struct {
	Input     string
	Output    string
	VideoDir  string
	LogLevel  string
	LogFormat string
	History   *bool
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// overrides (including a .env file in the working directory) are applied
// after the file is decoded. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	return LoadWithOverrides(path, Overrides{})
}

// LoadWithOverrides is Load with command-line overrides layered on top of the
// file and environment before validation, so a flag can replace an invalid
// file or environment value.
func LoadWithOverrides(path string, o Overrides) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, failures.Wrap(failures.ErrConfiguration, "config", "open", resolvedPath, err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, failures.Wrap(failures.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, "", false, failures.Wrap(failures.ErrConfiguration, "config", "load .env", "", err)
	}
	cfg.applyEnv()
	cfg.applyOverrides(o)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, failures.Wrap(failures.ErrConfiguration, "config", "normalize", "", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Apply layers command-line overrides onto the config and re-normalizes it.
func (c *Config) Apply(o Overrides) error {
	c.applyOverrides(o)
	if err := c.normalize(); err != nil {
		return failures.Wrap(failures.ErrConfiguration, "config", "normalize", "", err)
	}
	return c.Validate()
}

func (c *Config) applyOverrides(o Overrides) {
	if v := strings.TrimSpace(o.Input); v != "" {
		c.Paths.Input = v
	}
	if v := strings.TrimSpace(o.Output); v != "" {
		c.Paths.Output = v
	}
	if v := strings.TrimSpace(o.VideoDir); v != "" {
		c.Paths.VideoDir = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(o.LogFormat); v != "" {
		c.Logging.Format = v
	}
	if o.History != nil {
		c.History.Enabled = *o.History
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, failures.Wrap(failures.ErrConfiguration, "config", "resolve path", path, err)
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, failures.Wrap(failures.ErrConfiguration, "config", "", fmt.Sprintf("config file %s does not exist", expanded), nil)
			}
			return "", false, failures.Wrap(failures.ErrConfiguration, "config", "stat", expanded, err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, failures.Wrap(failures.ErrConfiguration, "config", "resolve default path", "", err)
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, failures.Wrap(failures.ErrConfiguration, "config", "resolve project path", "", err)
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Marshal renders the effective configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
