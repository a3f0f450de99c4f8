package dataset_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dataprep/internal/dataset"
	"dataprep/internal/testsupport"
)

func TestCount(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"train/class_a/a0.jpg",
		"train/class_a/b0.jpg",
		"train/class_b/c1.jpg",
		"train/loose1.jpg",
		"val/class_b/d1.jpg",
		"val/class_b/.DS_Store",
		".hidden/x.jpg",
	} {
		testsupport.WriteFile(t, filepath.Join(root, rel), 1)
	}
	if err := os.MkdirAll(filepath.Join(root, "test", "class_a"), 0o755); err != nil {
		t.Fatal(err)
	}

	tally, err := dataset.Count(root)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	want := dataset.Tally{
		"train": {"class_a": 2, "class_b": 1, "": 1},
		"val":   {"class_b": 1},
		"test":  {"class_a": 0},
	}
	if !reflect.DeepEqual(tally, want) {
		t.Fatalf("tally = %v, want %v", tally, want)
	}
	if tally.Total() != 5 || tally.SplitTotal("train") != 4 {
		t.Fatalf("totals: %d / %d", tally.Total(), tally.SplitTotal("train"))
	}
	if got := tally.SplitNames(); !reflect.DeepEqual(got, []string{"test", "train", "val"}) {
		t.Fatalf("SplitNames = %v", got)
	}
	if got := tally.LabelNames(); !reflect.DeepEqual(got, []string{"", "class_a", "class_b"}) {
		t.Fatalf("LabelNames = %v", got)
	}
}

func TestCountMissingRoot(t *testing.T) {
	tally, err := dataset.Count(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if tally.Total() != 0 {
		t.Fatalf("expected empty tally, got %v", tally)
	}
}

func TestRunPlacementsSince(t *testing.T) {
	run := dataset.NewRun("id", dataset.Layout{})
	run.Place("split", "train", "data", "a.jpg")
	run.Place("flatten", "train", "", "a.jpg")
	run.Place("flatten", "val", "", "b.jpg")

	got := run.PlacementsSince(1)
	if len(got) != 2 || got[0].Stage != "flatten" {
		t.Fatalf("PlacementsSince(1) = %+v", got)
	}
	if run.PlacementsSince(3) != nil || len(run.PlacementsSince(-1)) != 3 {
		t.Fatal("unexpected boundary behaviour")
	}
}
