package config

const (
	defaultLogDir    = "~/.local/share/casper/logs"
	defaultHistoryDB = "~/.local/share/casper/history.db"
	defaultModel     = "tiny"
	defaultPython    = "python3"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// ModelSizes lists every whisper model size the worker accepts, smallest first.
var ModelSizes = []string{
	"tiny", "base", "small", "medium",
	"large-v1", "large-v2", "large-v3", "large-v3-turbo",
}

// Devices lists the recognized inference devices.
var Devices = []string{"cuda", "cpu"}

// ComputeTypes lists the recognized numeric precision modes.
var ComputeTypes = []string{"float16", "float32", "int8"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Whisper: Whisper{
			Model:  defaultModel,
			Python: defaultPython,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
