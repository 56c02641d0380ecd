package pipeline

import (
	"testing"

	"casper/internal/transcribe"
)

func success(duration, processing float64) transcribe.Result {
	return transcribe.Result{
		Filename:       "f.wav",
		Duration:       duration,
		ProcessingTime: processing,
	}
}

func failure(processing float64) transcribe.Result {
	return transcribe.Result{
		Filename:       "f.wav",
		Err:            "boom",
		ProcessingTime: processing,
	}
}

func TestRecordFileKeepsInvariants(t *testing.T) {
	stats := NewStats()

	stats.RecordFile("alice", success(10, 2))
	stats.RecordFile("alice", failure(1))
	stats.RecordFile("bob", success(4, 1))

	if stats.TotalFiles != stats.SuccessfulFiles+stats.FilesWithErrors {
		t.Fatalf("invariant broken: %d != %d + %d",
			stats.TotalFiles, stats.SuccessfulFiles, stats.FilesWithErrors)
	}
	folderTotal := 0
	for _, fs := range stats.Folders {
		folderTotal += fs.FileCount
	}
	if folderTotal != stats.TotalFiles {
		t.Fatalf("folder counts sum to %d, want %d", folderTotal, stats.TotalFiles)
	}

	if stats.TotalFiles != 3 || stats.SuccessfulFiles != 2 || stats.FilesWithErrors != 1 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.TotalAudioDuration != 14 {
		t.Fatalf("audio duration should only count successes: %v", stats.TotalAudioDuration)
	}
	if stats.TotalProcessingTime != 4 {
		t.Fatalf("processing time should count every file: %v", stats.TotalProcessingTime)
	}

	alice := stats.Folders["alice"]
	if alice.FileCount != 2 || alice.SuccessCount != 1 || alice.ErrorCount != 1 {
		t.Fatalf("unexpected alice stats: %+v", alice)
	}
	if alice.AudioDuration != 10 || alice.ProcessingTime != 3 {
		t.Fatalf("unexpected alice accumulators: %+v", alice)
	}
}

func TestFolderNamesSorted(t *testing.T) {
	stats := NewStats()
	stats.RecordFile("zoe", success(1, 1))
	stats.RecordFile("adam", success(1, 1))
	stats.RecordFile("mia", failure(1))

	names := stats.FolderNames()
	want := []string{"adam", "mia", "zoe"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("unexpected order: %v", names)
		}
	}
}

func TestZeroGuards(t *testing.T) {
	stats := NewStats()
	if stats.RTF() != 0 {
		t.Fatalf("run rtf without audio should be 0, got %v", stats.RTF())
	}
	if stats.AverageTimePerFile() != 0 {
		t.Fatalf("run average without files should be 0, got %v", stats.AverageTimePerFile())
	}

	fs := &FolderStats{ProcessingTime: 5}
	if fs.RTF() != 0 {
		t.Fatalf("folder rtf without audio should be 0, got %v", fs.RTF())
	}
	if fs.AverageTimePerFile() != 0 {
		t.Fatalf("folder average without files should be 0, got %v", fs.AverageTimePerFile())
	}

	// A folder of errors only accumulates processing time, never duration.
	stats.RecordFile("errors", failure(2))
	if got := stats.Folders["errors"].RTF(); got != 0 {
		t.Fatalf("expected 0 rtf for error-only folder, got %v", got)
	}
	if got := stats.Folders["errors"].AverageTimePerFile(); got != 2 {
		t.Fatalf("expected average of 2, got %v", got)
	}
}
