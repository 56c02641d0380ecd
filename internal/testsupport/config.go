package testsupport

import (
	"path/filepath"
	"testing"

	"casper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfg.Whisper.Device = "cpu"
	cfg.Whisper.ComputeType = "int8"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithModel overrides the whisper model size on the test config.
func WithModel(model string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Whisper.Model = model
	}
}

// WithPython overrides the worker interpreter on the test config.
func WithPython(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Whisper.Python = path
	}
}
