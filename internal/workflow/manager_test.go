package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/ledger"
	"dataprep/internal/stage"
	"dataprep/internal/testsupport"
	"dataprep/internal/workflow"
)

type stubStage struct {
	name       string
	executeErr error
	executed   int
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Prepare(context.Context, *dataset.Run) error { return nil }

func (s *stubStage) Execute(_ context.Context, run *dataset.Run) error {
	s.executed++
	run.Place(s.name, dataset.SplitTrain, "class_a", s.name+"0.jpg")
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	if s.executeErr != nil {
		return stage.Unhealthy(s.name, "configured to fail")
	}
	return stage.Healthy(s.name)
}

func seedArchive(t *testing.T, layout dataset.Layout, perClass int) {
	t.Helper()
	entries := map[string][]byte{"data/": nil}
	jpg := testsupport.ImageBytes(t, ".jpg", 64, 48)
	for i := 0; i < perClass; i++ {
		entries[fmt.Sprintf("data/UID_%d_all0.jpg", i)] = jpg
		entries[fmt.Sprintf("data/UID_%d_hem1.jpg", i)] = jpg
	}
	testsupport.WriteZip(t, layout.Archive, entries)
}

func TestManagerRunsFullPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRatios(0.5, 0.25, 0.25))
	layout := testsupport.LocalLayout(t, cfg)
	seedArchive(t, layout, 4)
	store := testsupport.MustOpenLedger(t, layout)

	mgr := workflow.NewManager(cfg, store, layout, nil)
	want := []string{"extract", "split", "flatten", "clean", "partition", "promote", "preprocess"}
	if got := mgr.Stages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Stages() = %v, want %v", got, want)
	}

	run, err := mgr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	tally, err := dataset.Count(layout.DataDir)
	if err != nil {
		t.Fatal(err)
	}
	if tally.Total() != 8 {
		t.Fatalf("images after run = %d, want 8 (%v)", tally.Total(), tally)
	}
	if got := tally.SplitTotal(dataset.SplitTrain); got != 4 {
		t.Fatalf("train images = %d, want 4", got)
	}
	if got := tally.SplitTotal(dataset.SplitVal) + tally.SplitTotal(dataset.SplitTest); got != 4 {
		t.Fatalf("val+test images = %d, want 4", got)
	}
	if got := tally.LabelNames(); !reflect.DeepEqual(got, []string{"class_a", "class_b"}) {
		t.Fatalf("labels = %v", got)
	}

	for _, rel := range testsupport.ListFiles(t, layout.DataDir) {
		label := strings.Split(rel, "/")[1]
		if strings.HasSuffix(rel, "0.jpg") != (label == "class_a") {
			t.Fatalf("%s sorted into the wrong class", rel)
		}
		img := testsupport.ReadImage(t, filepath.Join(layout.DataDir, filepath.FromSlash(rel)))
		if b := img.Bounds(); b.Dx() != 34 || b.Dy() != 18 {
			t.Fatalf("%s bounds = %v, want 34x18", rel, b)
		}
		if _, ok := img.(*image.Gray); !ok {
			t.Fatalf("%s decoded as %T, want grayscale", rel, img)
		}
	}

	recorded, err := store.GetRun(context.Background(), run.ID)
	if err != nil || recorded == nil {
		t.Fatalf("GetRun: %v %v", recorded, err)
	}
	if recorded.Status != ledger.StatusCompleted {
		t.Fatalf("run status = %s", recorded.Status)
	}
	events, err := store.StageEvents(context.Background(), run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != len(want) {
		t.Fatalf("stage events = %d, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev.Stage != want[i] || ev.Status != ledger.StatusCompleted {
			t.Fatalf("event %d = %+v", i, ev)
		}
	}
	counts, err := store.PlacementCounts(context.Background(), run.ID, "partition")
	if err != nil {
		t.Fatal(err)
	}
	if got := counts[dataset.SplitTrain]["class_a"] + counts[dataset.SplitTrain]["class_b"]; got != 4 {
		t.Fatalf("partition counts = %v", counts)
	}
}

func TestManagerRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := testsupport.LocalLayout(t, cfg)
	store := testsupport.MustOpenLedger(t, layout)

	first := &stubStage{name: "first"}
	broken := &stubStage{name: "broken", executeErr: faults.Wrap(faults.ErrNotFound, "broken", "look", "missing", nil)}
	last := &stubStage{name: "last"}
	mgr := workflow.NewManager(cfg, store, layout, nil,
		workflow.WithoutPreflight(),
		workflow.WithStages(workflow.StageSet{Extractor: first, Splitter: broken, Flattener: last}),
	)

	run, err := mgr.Run(context.Background())
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if last.executed != 0 {
		t.Fatalf("stage after failure executed")
	}

	recorded, err := store.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if recorded.Status != ledger.StatusInvalid || recorded.ErrorMessage == "" {
		t.Fatalf("unexpected run record %+v", recorded)
	}
	events, err := store.StageEvents(context.Background(), run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[1].Status != ledger.StatusInvalid {
		t.Fatalf("unexpected events %+v", events)
	}
	// Placements reported before the failure are still recorded.
	placements, err := store.Placements(context.Background(), run.ID, "broken")
	if err != nil || len(placements) != 1 {
		t.Fatalf("placements = %v, err = %v", placements, err)
	}

	status := mgr.Status(context.Background())
	if status.Ready() {
		t.Fatalf("expected not ready: %+v", status)
	}
}

func TestManagerRunStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := testsupport.LocalLayout(t, cfg)
	store := testsupport.MustOpenLedger(t, layout)
	mgr := workflow.NewManager(cfg, store, layout, nil)

	if _, err := mgr.RunStage(context.Background(), "bogus"); !errors.Is(err, workflow.ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}

	// Cleaning before anything was split finds no output directory.
	run, err := mgr.RunStage(context.Background(), "clean")
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	events, err := store.StageEvents(context.Background(), run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Stage != "clean" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestManagerRefusesConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := testsupport.LocalLayout(t, cfg)
	store := testsupport.MustOpenLedger(t, layout)
	if err := config.EnsureStateDir(layout); err != nil {
		t.Fatal(err)
	}

	holder := flock.New(layout.LockPath())
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	t.Cleanup(func() { _ = holder.Unlock() })

	mgr := workflow.NewManager(cfg, store, layout, nil, workflow.WithoutPreflight(),
		workflow.WithStages(workflow.StageSet{Extractor: &stubStage{name: "only"}}))
	if _, err := mgr.Run(context.Background()); !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	runs, err := store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("locked run should not be recorded: %+v", runs)
	}
}

func TestManagerPreflightBlocksRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := testsupport.LocalLayout(t, cfg)
	store := testsupport.MustOpenLedger(t, layout)
	only := &stubStage{name: "only"}
	mgr := workflow.NewManager(cfg, store, layout, nil, workflow.WithStages(workflow.StageSet{Extractor: only}))

	if _, err := mgr.Run(context.Background()); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected preflight ErrValidation without archive, got %v", err)
	}
	if only.executed != 0 {
		t.Fatal("stage ran despite failed preflight")
	}
}
