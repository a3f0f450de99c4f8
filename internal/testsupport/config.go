package testsupport

import (
	"testing"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted at a unique temp directory per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.BaseDir = base
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithRatios overrides the train/val/test split ratios.
func WithRatios(train, val, test float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.TrainRatio = train
		b.cfg.Split.ValRatio = val
		b.cfg.Split.TestRatio = test
	}
}

// WithSeed overrides the shuffle seed.
func WithSeed(seed int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.Seed = seed
	}
}

// WithMoveFiles makes the splitter move instead of copy.
func WithMoveFiles() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.MoveFiles = true
	}
}

// WithOverwriteOnMove lets the flattener replace existing files.
func WithOverwriteOnMove() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Layout.OverwriteOnMove = true
	}
}

// WithCrop overrides the preprocessing crop margins.
func WithCrop(top, left int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preprocess.CropTop = top
		b.cfg.Preprocess.CropLeft = left
	}
}

// LocalLayout resolves the local deployment layout for cfg.
func LocalLayout(t testing.TB, cfg *config.Config) dataset.Layout {
	t.Helper()

	layout, err := cfg.ResolveLayout(dataset.EnvLocal)
	if err != nil {
		t.Fatalf("ResolveLayout: %v", err)
	}
	return layout
}
