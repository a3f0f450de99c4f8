package layout_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/layout"
	"dataprep/internal/testsupport"
)

func TestFlattenKeepsFileSet(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"train/data/a0.jpg",
		"train/data/b1.jpg",
		"val/data/c0.jpg",
		"test/data/d1.jpg",
		"test/extra/e1.jpg",
	} {
		testsupport.WriteFile(t, filepath.Join(root, rel), 3)
	}

	placements, err := layout.Flatten(context.Background(), root, false)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(placements) != 5 {
		t.Fatalf("placements = %d, want 5", len(placements))
	}

	want := []string{"test/d1.jpg", "test/e1.jpg", "train/a0.jpg", "train/b1.jpg", "val/c0.jpg"}
	if got := testsupport.ListFiles(t, root); !reflect.DeepEqual(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	// Emptied directories stay for the cleaner.
	if _, err := os.Stat(filepath.Join(root, "train", "data")); err != nil {
		t.Fatalf("expected empty nested dir to remain: %v", err)
	}
}

func TestFlattenRefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "train", "a0.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "train", "data", "a0.jpg"), 9)

	_, err := layout.Flatten(context.Background(), root, false)
	if !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "train", "a0.jpg"))
	if err != nil || info.Size() != 1 {
		t.Fatalf("existing file changed: %v %v", info, err)
	}

	if _, err := layout.Flatten(context.Background(), root, true); err != nil {
		t.Fatalf("Flatten with overwrite: %v", err)
	}
	info, err = os.Stat(filepath.Join(root, "train", "a0.jpg"))
	if err != nil || info.Size() != 9 {
		t.Fatalf("expected overwritten file, got %v %v", info, err)
	}
}

func TestRemoveNested(t *testing.T) {
	root := t.TempDir()
	for _, split := range dataset.Splits() {
		testsupport.WriteFile(t, filepath.Join(root, split, "keep.jpg"), 1)
		if err := os.MkdirAll(filepath.Join(root, split, "data", "deeper"), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := layout.RemoveNested(context.Background(), root, "data")
	if err != nil {
		t.Fatalf("RemoveNested: %v", err)
	}
	if len(removed) != 3 {
		t.Fatalf("removed = %v, want 3 entries", removed)
	}
	for _, split := range dataset.Splits() {
		if _, err := os.Stat(filepath.Join(root, split, "data")); !os.IsNotExist(err) {
			t.Fatalf("nested dir in %s still present: %v", split, err)
		}
	}
	if got := len(testsupport.ListFiles(t, root)); got != 3 {
		t.Fatalf("files = %d, want 3", got)
	}
}

func TestRemoveNestedMissingDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "train"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := layout.RemoveNested(context.Background(), root, "data")
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPromote(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	outputDir := filepath.Join(dir, "output")
	testsupport.WriteFile(t, filepath.Join(dataDir, "data", "old.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(outputDir, "train", "class_a", "new0.jpg"), 1)

	if err := layout.Promote(dataDir, outputDir); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if got := testsupport.ListFiles(t, dataDir); !reflect.DeepEqual(got, []string{"train/class_a/new0.jpg"}) {
		t.Fatalf("data dir = %v", got)
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Fatalf("output dir should be gone: %v", err)
	}

	if err := layout.Promote(dataDir, outputDir); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second promote, got %v", err)
	}
}

func TestLayoutStages(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOverwriteOnMove())
	paths := testsupport.LocalLayout(t, cfg)
	testsupport.WriteFile(t, filepath.Join(paths.DataDir, "data", "src0.jpg"), 1)
	for _, split := range dataset.Splits() {
		testsupport.WriteFile(t, filepath.Join(paths.OutputDir, split, "data", split+"0.jpg"), 1)
	}
	// Left over from an earlier flatten; replaced because overwrite is enabled.
	testsupport.WriteFile(t, filepath.Join(paths.OutputDir, "train", "train0.jpg"), 2)
	run := dataset.NewRun("run-layout", paths)
	ctx := context.Background()

	for _, handler := range []interface {
		Name() string
		Prepare(context.Context, *dataset.Run) error
		Execute(context.Context, *dataset.Run) error
	}{
		layout.NewFlattener(cfg, nil),
		layout.NewCleaner(cfg, nil),
		layout.NewPromoter(nil),
	} {
		if err := handler.Prepare(ctx, run); err != nil {
			t.Fatalf("%s Prepare: %v", handler.Name(), err)
		}
		if err := handler.Execute(ctx, run); err != nil {
			t.Fatalf("%s Execute: %v", handler.Name(), err)
		}
	}

	want := []string{"test/test0.jpg", "train/train0.jpg", "val/val0.jpg"}
	if got := testsupport.ListFiles(t, paths.DataDir); !reflect.DeepEqual(got, want) {
		t.Fatalf("data dir = %v, want %v", got, want)
	}
	if len(run.Placements) != 3 {
		t.Fatalf("placements = %d, want 3", len(run.Placements))
	}
}
