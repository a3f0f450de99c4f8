package imageproc

import (
	"context"
	"log/slog"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/logging"
	"dataprep/internal/stage"
)

// StageName is the pipeline name of the preprocessing step.
const StageName = "preprocess"

// ParamsFromConfig builds the transform constants from the [preprocess] section.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Threshold: cfg.Preprocess.Threshold,
		MaxValue:  cfg.Preprocess.MaxValue,
		CropTop:   cfg.Preprocess.CropTop,
		CropLeft:  cfg.Preprocess.CropLeft,
	}
}

// Preprocessor is the stage handler wrapping ProcessTree.
type Preprocessor struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewPreprocessor constructs the preprocess stage handler.
func NewPreprocessor(cfg *config.Config, logger *slog.Logger) *Preprocessor {
	return &Preprocessor{cfg: cfg, logger: logging.NewComponentLogger(logger, StageName)}
}

func (p *Preprocessor) Name() string { return StageName }

func (p *Preprocessor) SetLogger(logger *slog.Logger) {
	p.logger = logging.NewComponentLogger(logger, StageName)
}

func (p *Preprocessor) Prepare(context.Context, *dataset.Run) error { return nil }

func (p *Preprocessor) Execute(ctx context.Context, run *dataset.Run) error {
	logger := logging.WithContext(ctx, p.logger)
	params := ParamsFromConfig(p.cfg)
	logger.Info("pre-processing images",
		logging.Int("threshold", params.Threshold),
		logging.Int("max_value", params.MaxValue),
		logging.Int("crop_top", params.CropTop),
		logging.Int("crop_left", params.CropLeft),
	)

	processed, err := ProcessTree(ctx, run.Layout.DataDir, params, p.cfg.Preprocess.JPEGQuality, logger)
	run.Placements = append(run.Placements, processed...)
	if err != nil {
		return err
	}
	logger.Info("images pre-processed", logging.Int("files", len(processed)))
	return nil
}

func (p *Preprocessor) HealthCheck(context.Context) stage.Health {
	if p.cfg == nil {
		return stage.Unhealthy(StageName, "configuration unavailable")
	}
	return stage.Healthy(StageName)
}
