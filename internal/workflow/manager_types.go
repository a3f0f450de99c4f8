package workflow

import (
	"log/slog"

	"dataprep/internal/archive"
	"dataprep/internal/classify"
	"dataprep/internal/config"
	"dataprep/internal/imageproc"
	"dataprep/internal/layout"
	"dataprep/internal/splitter"
	"dataprep/internal/stage"
)

// StageSet bundles the concrete handlers the manager orchestrates.
type StageSet struct {
	Extractor    stage.Handler
	Splitter     stage.Handler
	Flattener    stage.Handler
	Cleaner      stage.Handler
	Partitioner  stage.Handler
	Promoter     stage.Handler
	Preprocessor stage.Handler
}

// DefaultStages builds the production handlers from configuration.
func DefaultStages(cfg *config.Config, logger *slog.Logger) StageSet {
	return StageSet{
		Extractor:    archive.NewExtractor(logger),
		Splitter:     splitter.NewSplitter(cfg, logger),
		Flattener:    layout.NewFlattener(cfg, logger),
		Cleaner:      layout.NewCleaner(cfg, logger),
		Partitioner:  classify.NewPartitioner(cfg, logger),
		Promoter:     layout.NewPromoter(logger),
		Preprocessor: imageproc.NewPreprocessor(cfg, logger),
	}
}

// ordered returns the configured handlers in pipeline order, skipping nils.
func (s StageSet) ordered() []stage.Handler {
	all := []stage.Handler{
		s.Extractor,
		s.Splitter,
		s.Flattener,
		s.Cleaner,
		s.Partitioner,
		s.Promoter,
		s.Preprocessor,
	}
	out := make([]stage.Handler, 0, len(all))
	for _, h := range all {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
