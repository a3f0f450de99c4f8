package layout

import (
	"context"
	"log/slog"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/logging"
	"dataprep/internal/stage"
)

// Pipeline names of the layout steps.
const (
	FlattenStage = "flatten"
	CleanStage   = "clean"
	PromoteStage = "promote"
)

// Flattener is the stage handler wrapping Flatten.
type Flattener struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewFlattener constructs the flatten stage handler.
func NewFlattener(cfg *config.Config, logger *slog.Logger) *Flattener {
	return &Flattener{cfg: cfg, logger: logging.NewComponentLogger(logger, FlattenStage)}
}

func (f *Flattener) Name() string { return FlattenStage }

func (f *Flattener) SetLogger(logger *slog.Logger) {
	f.logger = logging.NewComponentLogger(logger, FlattenStage)
}

func (f *Flattener) Prepare(context.Context, *dataset.Run) error { return nil }

func (f *Flattener) Execute(ctx context.Context, run *dataset.Run) error {
	logger := logging.WithContext(ctx, f.logger)
	logger.Info("moving images to split directories",
		logging.String("output", run.Layout.OutputDir),
		logging.Bool("overwrite", f.cfg.Layout.OverwriteOnMove),
	)
	placements, err := Flatten(ctx, run.Layout.OutputDir, f.cfg.Layout.OverwriteOnMove)
	run.Placements = append(run.Placements, placements...)
	if err != nil {
		return err
	}
	logger.Info("images moved", logging.Int("files", len(placements)))
	return nil
}

func (f *Flattener) HealthCheck(context.Context) stage.Health {
	if f.cfg == nil {
		return stage.Unhealthy(FlattenStage, "configuration unavailable")
	}
	return stage.Healthy(FlattenStage)
}

// Cleaner is the stage handler wrapping RemoveNested.
type Cleaner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCleaner constructs the clean stage handler.
func NewCleaner(cfg *config.Config, logger *slog.Logger) *Cleaner {
	return &Cleaner{cfg: cfg, logger: logging.NewComponentLogger(logger, CleanStage)}
}

func (c *Cleaner) Name() string { return CleanStage }

func (c *Cleaner) SetLogger(logger *slog.Logger) {
	c.logger = logging.NewComponentLogger(logger, CleanStage)
}

func (c *Cleaner) Prepare(context.Context, *dataset.Run) error { return nil }

func (c *Cleaner) Execute(ctx context.Context, run *dataset.Run) error {
	logger := logging.WithContext(ctx, c.logger)
	removed, err := RemoveNested(ctx, run.Layout.OutputDir, c.cfg.Layout.NestedDir)
	for _, dir := range removed {
		logger.Debug("removed nested directory", logging.String("path", dir))
	}
	if err != nil {
		return err
	}
	logger.Info("nested directories removed",
		logging.String("nested_dir", c.cfg.Layout.NestedDir),
		logging.Int("count", len(removed)),
	)
	return nil
}

func (c *Cleaner) HealthCheck(context.Context) stage.Health {
	if c.cfg == nil {
		return stage.Unhealthy(CleanStage, "configuration unavailable")
	}
	return stage.Healthy(CleanStage)
}

// Promoter is the stage handler wrapping Promote.
type Promoter struct {
	logger *slog.Logger
}

// NewPromoter constructs the promote stage handler.
func NewPromoter(logger *slog.Logger) *Promoter {
	return &Promoter{logger: logging.NewComponentLogger(logger, PromoteStage)}
}

func (p *Promoter) Name() string { return PromoteStage }

func (p *Promoter) SetLogger(logger *slog.Logger) {
	p.logger = logging.NewComponentLogger(logger, PromoteStage)
}

func (p *Promoter) Prepare(context.Context, *dataset.Run) error { return nil }

func (p *Promoter) Execute(ctx context.Context, run *dataset.Run) error {
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("renaming output directory",
		logging.String("from", run.Layout.OutputDir),
		logging.String("to", run.Layout.DataDir),
	)
	return Promote(run.Layout.DataDir, run.Layout.OutputDir)
}

func (p *Promoter) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(PromoteStage)
}
