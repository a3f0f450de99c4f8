package ledger_test

import (
	"context"
	"path/filepath"
	"testing"

	"dataprep/internal/ledger"
	"dataprep/internal/testsupport"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	return testsupport.MustOpenTempLedger(t)
}

func TestBeginAndFinishRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "run-1", "local", "/tmp/root")
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if run == nil || run.Status != ledger.StatusRunning {
		t.Fatalf("unexpected run after begin: %#v", run)
	}
	if run.FinishedAt != nil {
		t.Fatal("expected running run to have no finish time")
	}

	if err := store.FinishRun(ctx, "run-1", ledger.StatusFailed, "preprocess: decode"); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	fetched, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched.Status != ledger.StatusFailed {
		t.Fatalf("expected failed status, got %s", fetched.Status)
	}
	if fetched.ErrorMessage != "preprocess: decode" {
		t.Fatalf("unexpected error message %q", fetched.ErrorMessage)
	}
	if fetched.FinishedAt == nil {
		t.Fatal("expected finish time to be recorded")
	}
	if !fetched.Status.IsTerminal() {
		t.Fatal("expected failed to be terminal")
	}
}

func TestBeginRunRequiresID(t *testing.T) {
	store := openStore(t)
	if _, err := store.BeginRun(context.Background(), "", "local", "/tmp"); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestFinishUnknownRunFails(t *testing.T) {
	store := openStore(t)
	if err := store.FinishRun(context.Background(), "missing", ledger.StatusCompleted, ""); err == nil {
		t.Fatal("expected error finishing unknown run")
	}
}

func TestGetRunMissingReturnsNil(t *testing.T) {
	store := openStore(t)
	run, err := store.GetRun(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil run, got %#v", run)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.BeginRun(ctx, id, "local", "/root"); err != nil {
			t.Fatalf("BeginRun %s failed: %v", id, err)
		}
	}
	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}
	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestStageEventsLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "run", "colab", "/root"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	first, err := store.StartStage(ctx, "run", "extract")
	if err != nil {
		t.Fatalf("StartStage failed: %v", err)
	}
	if err := store.FinishStage(ctx, first, ledger.StatusCompleted, "12 files"); err != nil {
		t.Fatalf("FinishStage failed: %v", err)
	}
	if _, err := store.StartStage(ctx, "run", "split"); err != nil {
		t.Fatalf("StartStage failed: %v", err)
	}

	events, err := store.StageEvents(ctx, "run")
	if err != nil {
		t.Fatalf("StageEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Stage != "extract" || events[0].Status != ledger.StatusCompleted || events[0].Detail != "12 files" {
		t.Fatalf("unexpected first event: %#v", events[0])
	}
	if events[0].FinishedAt == nil {
		t.Fatal("expected finished stage to have finish time")
	}
	if events[1].Stage != "split" || events[1].Status != ledger.StatusRunning {
		t.Fatalf("unexpected second event: %#v", events[1])
	}
}

func TestPlacementsRoundTripAndCounts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "run", "local", "/root"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	placements := []ledger.Placement{
		{RunID: "run", Stage: "split", Split: "train", Label: "data", File: "b0.jpg"},
		{RunID: "run", Stage: "split", Split: "train", Label: "data", File: "a1.jpg"},
		{RunID: "run", Stage: "split", Split: "val", Label: "data", File: "a0.jpg"},
		{RunID: "run", Stage: "partition", Split: "val", Label: "class_a", File: "a0.jpg"},
	}
	if err := store.RecordPlacements(ctx, placements); err != nil {
		t.Fatalf("RecordPlacements failed: %v", err)
	}
	if err := store.RecordPlacements(ctx, nil); err != nil {
		t.Fatalf("RecordPlacements(nil) failed: %v", err)
	}

	split, err := store.Placements(ctx, "run", "split")
	if err != nil {
		t.Fatalf("Placements failed: %v", err)
	}
	if len(split) != 3 {
		t.Fatalf("expected 3 split placements, got %d", len(split))
	}
	if split[0].File != "a1.jpg" || split[1].File != "b0.jpg" || split[2].Split != "val" {
		t.Fatalf("unexpected ordering: %#v", split)
	}

	counts, err := store.PlacementCounts(ctx, "run", "split")
	if err != nil {
		t.Fatalf("PlacementCounts failed: %v", err)
	}
	if counts["train"]["data"] != 2 || counts["val"]["data"] != 1 {
		t.Fatalf("unexpected counts: %#v", counts)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()
	store, err := ledger.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.BeginRun(ctx, "persisted", "local", "/root"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := ledger.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if reopened.Path() != path {
		t.Fatalf("unexpected path %q", reopened.Path())
	}
	run, err := reopened.GetRun(ctx, "persisted")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run == nil {
		t.Fatal("expected run to survive reopen")
	}
}
