package config

const (
	defaultConfigPath  = "~/.config/elatprep/config.toml"
	projectConfigFile  = "elatprep.toml"
	dotEnvFile         = ".env"
	defaultLogFormat   = LogFormatConsole
	defaultLogLevel    = "info"
	defaultHistoryPath = "~/.local/share/elatprep/history.db"
)

// Supported values for logging.format.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Environment variables consulted after the config file is decoded.
const (
	EnvInput     = "ELATPREP_INPUT"
	EnvOutput    = "ELATPREP_OUTPUT"
	EnvVideoDir  = "ELATPREP_VIDEO_DIR"
	EnvLogLevel  = "ELATPREP_LOG_LEVEL"
	EnvLogFormat = "ELATPREP_LOG_FORMAT"
	EnvHistory   = "ELATPREP_HISTORY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: false,
			Path:    defaultHistoryPath,
		},
	}
}
