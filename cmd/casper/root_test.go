package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"casper/internal/testsupport"
)

func TestRootWithoutInputShowsHelp(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("bare invocation: %v", err)
	}
	requireContains(t, out, "Batch speech transcription pipeline")
}

func TestRootRejectsMissingInputDir(t *testing.T) {
	env := setupCLITestEnv(t)

	missing := filepath.Join(env.baseDir, "no-such-dir")
	_, _, err := runCLI(t, []string{
		"--input", missing,
		"--output", filepath.Join(env.baseDir, "out"),
		"--skip-gpu-check",
	}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
	requireContains(t, err.Error(), "input directory does not exist")
}

func TestRootRejectsUnknownModel(t *testing.T) {
	env := setupCLITestEnv(t)
	inputDir := testsupport.SeedInputTree(t, map[string][]string{"alice": {"a.wav"}})

	_, _, err := runCLI(t, []string{
		"--input", inputDir,
		"--output", filepath.Join(env.baseDir, "out"),
		"--model", "enormous",
		"--skip-gpu-check",
	}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	requireContains(t, err.Error(), "unknown model size")
}

func TestRootRunsPipeline(t *testing.T) {
	env := setupCLITestEnv(t)
	inputDir := testsupport.SeedInputTree(t, map[string][]string{
		"alice": {"a.wav", "notes.txt"},
	})
	outputDir := filepath.Join(env.baseDir, "out")

	out, _, err := runCLI(t, []string{
		"--input", inputDir,
		"--output", outputDir,
		"--model", "tiny",
		"--device", "cpu",
		"--compute-type", "int8",
		"--skip-gpu-check",
	}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Processed 1 files across 1 folders (1 successful, 0 errors)")

	file, err := os.Open(filepath.Join(outputDir, "alice", "alice_transcriptions.csv"))
	if err != nil {
		t.Fatalf("open folder csv: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parse folder csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("folder csv rows = %d, want header + 1", len(rows))
	}
	joined := strings.Join(rows[1], "|")
	requireContains(t, joined, "a.wav")
	requireContains(t, joined, "hi there")

	if _, err := os.Stat(filepath.Join(outputDir, "master_transcription_log.csv")); err != nil {
		t.Fatalf("master log missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "transcription_summary.txt")); err != nil {
		t.Fatalf("summary missing: %v", err)
	}
}

func TestHistoryListsRecordedRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	inputDir := testsupport.SeedInputTree(t, map[string][]string{
		"alice": {"a.wav"},
	})

	_, _, err := runCLI(t, []string{
		"--input", inputDir,
		"--output", filepath.Join(env.baseDir, "out"),
		"--skip-gpu-check",
	}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "tiny")
	requireContains(t, out, "cpu")
}

func TestHistoryEmptyDatabase(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded yet.")
}
