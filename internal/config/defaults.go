package config

const (
	defaultConfigPath      = "~/.config/mediabox/config.toml"
	defaultLogDir          = "~/.local/share/mediabox/logs"
	defaultHistoryDB       = "~/.local/share/mediabox/history.db"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultSubtitleEncoder = "webvtt"
	defaultHistoryEnabled  = true
	defaultLockOutputs     = true

	// LogLevelEnv overrides logging.level when the config leaves it empty.
	LogLevelEnv = "MEDIABOX_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
		},
		Transcode: Transcode{
			SubtitleEncoder: defaultSubtitleEncoder,
			LockOutputs:     defaultLockOutputs,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
	}
}
