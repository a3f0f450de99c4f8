package splitter

import (
	"context"
	"log/slog"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/fileutil"
	"dataprep/internal/logging"
	"dataprep/internal/stage"
)

// StageName is the pipeline name of the splitting step.
const StageName = "split"

// Splitter is the stage handler wrapping Split.
type Splitter struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewSplitter constructs the split stage handler.
func NewSplitter(cfg *config.Config, logger *slog.Logger) *Splitter {
	return &Splitter{cfg: cfg, logger: logging.NewComponentLogger(logger, StageName)}
}

func (s *Splitter) Name() string { return StageName }

func (s *Splitter) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, StageName)
}

func (s *Splitter) options() Options {
	ratios := s.cfg.Ratios()
	return Options{
		Ratios: Ratios{Train: ratios[0], Val: ratios[1], Test: ratios[2]},
		Seed:   s.cfg.Split.Seed,
		Move:   s.cfg.Split.MoveFiles,
	}
}

// Prepare refuses to split into an output directory that already holds
// entries from an earlier run.
func (s *Splitter) Prepare(_ context.Context, run *dataset.Run) error {
	if err := s.options().Ratios.Validate(); err != nil {
		return err
	}
	entries, err := fileutil.SnapshotDir(run.Layout.OutputDir)
	if err == nil && len(entries) > 0 {
		return faults.Wrap(faults.ErrConflict, StageName, "check output",
			"output directory is not empty: "+run.Layout.OutputDir, nil)
	}
	return nil
}

func (s *Splitter) Execute(ctx context.Context, run *dataset.Run) error {
	logger := logging.WithContext(ctx, s.logger)
	opts := s.options()
	logger.Info("splitting data",
		logging.Float64("train_ratio", opts.Ratios.Train),
		logging.Float64("val_ratio", opts.Ratios.Val),
		logging.Float64("test_ratio", opts.Ratios.Test),
		logging.Int64("seed", opts.Seed),
		logging.Bool("move_files", opts.Move),
	)

	placements, err := Split(ctx, run.Layout.DataDir, run.Layout.OutputDir, opts)
	run.Placements = append(run.Placements, placements...)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, p := range placements {
		counts[p.Split]++
	}
	logger.Info("data split",
		logging.Int(dataset.SplitTrain, counts[dataset.SplitTrain]),
		logging.Int(dataset.SplitVal, counts[dataset.SplitVal]),
		logging.Int(dataset.SplitTest, counts[dataset.SplitTest]),
	)
	return nil
}

func (s *Splitter) HealthCheck(_ context.Context) stage.Health {
	if s.cfg == nil {
		return stage.Unhealthy(StageName, "configuration unavailable")
	}
	if err := s.options().Ratios.Validate(); err != nil {
		return stage.Unhealthy(StageName, err.Error())
	}
	return stage.Healthy(StageName)
}
