package archive

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/logging"
	"dataprep/internal/stage"
)

// StageName is the pipeline name of the extraction step.
const StageName = "extract"

// Extractor is the stage handler wrapping Extract.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor constructs the extraction stage handler.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logging.NewComponentLogger(logger, StageName)}
}

func (e *Extractor) Name() string { return StageName }

func (e *Extractor) SetLogger(logger *slog.Logger) {
	e.logger = logging.NewComponentLogger(logger, StageName)
}

func (e *Extractor) Prepare(_ context.Context, run *dataset.Run) error {
	info, err := os.Stat(run.Layout.Archive)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return faults.Wrap(faults.ErrNotFound, StageName, "locate archive", run.Layout.Archive, err)
		}
		return faults.Wrap(faults.ErrIO, StageName, "locate archive", run.Layout.Archive, err)
	}
	if info.IsDir() {
		return faults.Wrap(faults.ErrValidation, StageName, "locate archive", "archive path is a directory", nil)
	}
	return nil
}

func (e *Extractor) Execute(ctx context.Context, run *dataset.Run) error {
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("unzipping archive",
		logging.String("archive", run.Layout.Archive),
		logging.String("destination", run.Layout.DataDir),
	)

	result, err := Extract(ctx, run.Layout.Archive, run.Layout.DataDir)
	if err != nil {
		return err
	}
	for _, file := range result.Files {
		dir := path.Dir(file)
		if dir == "." {
			dir = ""
		}
		run.Place(StageName, "", dir, path.Base(file))
	}

	logger.Info("archive unzipped",
		logging.Int("files", len(result.Files)),
		logging.Int("directories", result.Dirs),
		logging.Int64("bytes", result.Bytes),
	)
	return nil
}

func (e *Extractor) HealthCheck(_ context.Context) stage.Health {
	return stage.Healthy(StageName)
}
