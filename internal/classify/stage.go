package classify

import (
	"context"
	"log/slog"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/logging"
	"dataprep/internal/stage"
)

// StageName is the pipeline name of the class partition step.
const StageName = "partition"

// RuleFromConfig builds the filename rule from the [classes] section.
func RuleFromConfig(cfg *config.Config) Rule {
	return Rule{
		ClassA:  cfg.Classes.ClassA,
		ClassB:  cfg.Classes.ClassB,
		SuffixA: cfg.Classes.ClassASuffix,
	}
}

// Partitioner is the stage handler wrapping Partition.
type Partitioner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewPartitioner constructs the partition stage handler.
func NewPartitioner(cfg *config.Config, logger *slog.Logger) *Partitioner {
	return &Partitioner{cfg: cfg, logger: logging.NewComponentLogger(logger, StageName)}
}

func (p *Partitioner) Name() string { return StageName }

func (p *Partitioner) SetLogger(logger *slog.Logger) {
	p.logger = logging.NewComponentLogger(logger, StageName)
}

func (p *Partitioner) Prepare(context.Context, *dataset.Run) error { return nil }

func (p *Partitioner) Execute(ctx context.Context, run *dataset.Run) error {
	logger := logging.WithContext(ctx, p.logger)
	rule := RuleFromConfig(p.cfg)
	logger.Info("creating class directories",
		logging.String("class_a", rule.ClassA),
		logging.String("class_b", rule.ClassB),
		logging.String("class_a_suffix", rule.SuffixA),
	)

	placements, err := Partition(ctx, run.Layout.OutputDir, rule, p.cfg.Layout.OverwriteOnMove, logger)
	run.Placements = append(run.Placements, placements...)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, pl := range placements {
		counts[pl.Label]++
	}
	logger.Info("images partitioned",
		logging.Int(rule.ClassA, counts[rule.ClassA]),
		logging.Int(rule.ClassB, counts[rule.ClassB]),
	)
	return nil
}

func (p *Partitioner) HealthCheck(context.Context) stage.Health {
	if p.cfg == nil {
		return stage.Unhealthy(StageName, "configuration unavailable")
	}
	if p.cfg.Classes.ClassASuffix == "" {
		return stage.Unhealthy(StageName, "class_a suffix not configured")
	}
	return stage.Healthy(StageName)
}
