package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"casper/internal/config"
	"casper/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv isolates HOME, installs a stub whisper interpreter, and
// writes a config file pointing at per-test directories.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("CASPER_PYTHON", "")

	cfg := testsupport.NewConfig(t, testsupport.WithPython(writeStubInterpreter(t)))

	configPath := filepath.Join(homeDir, ".config", "casper", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

// writeStubInterpreter builds a shell script that speaks the worker protocol:
// a ready event, then one fixed successful transcription per request.
func writeStubInterpreter(t *testing.T) string {
	t.Helper()
	response := `{"language":"en","language_probability":0.95,` +
		`"segments":[{"start":0,"end":1,"text":" hi"},{"start":1,"end":2.5,"text":" there"}]}`
	script := strings.Join([]string{
		"#!/bin/sh",
		`echo '{"event":"ready","load_time_sec":0.01}'`,
		"while read line; do",
		"  echo '" + response + "'",
		"done",
	}, "\n") + "\n"
	path := filepath.Join(t.TempDir(), "python-stub")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write interpreter stub: %v", err)
	}
	return path
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
