package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"casper/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(started time.Time) history.Run {
	return history.Run{
		ID:                uuid.New().String(),
		StartedAt:         started,
		FinishedAt:        started.Add(90 * time.Second),
		Model:             "tiny",
		Device:            "cpu",
		Folders:           2,
		Files:             5,
		Successful:        4,
		Errors:            1,
		AudioDurationSec:  120.5,
		ProcessingTimeSec: 88.25,
	}
}

func TestRecordAndListRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	first := sampleRun(base)
	second := sampleRun(base.Add(time.Hour))

	if err := store.RecordRun(ctx, first); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.RecordRun(ctx, second); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Most recent first.
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("unexpected order: %q then %q", runs[0].ID, runs[1].ID)
	}

	got := runs[1]
	if !got.StartedAt.Equal(first.StartedAt) || !got.FinishedAt.Equal(first.FinishedAt) {
		t.Fatalf("timestamps mangled: %+v", got)
	}
	if got.Files != 5 || got.Successful != 4 || got.Errors != 1 {
		t.Fatalf("counters mangled: %+v", got)
	}
	if got.AudioDurationSec != 120.5 || got.ProcessingTimeSec != 88.25 {
		t.Fatalf("durations mangled: %+v", got)
	}
}

func TestListRunsHonoursLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := store.RecordRun(ctx, sampleRun(base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(runs))
	}
}

func TestRecordRunRequiresID(t *testing.T) {
	store := openStore(t)
	run := sampleRun(time.Now())
	run.ID = ""
	if err := store.RecordRun(context.Background(), run); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if store.Path() != path {
		t.Fatalf("unexpected path: %q", store.Path())
	}
}
