package workflow

import (
	"context"

	"dataprep/internal/preflight"
	"dataprep/internal/stage"
)

// StatusSummary is what the check command reports.
type StatusSummary struct {
	Preflight   []preflight.Result
	StageHealth []stage.Health
}

// Ready reports whether every check passed and every stage is healthy.
func (s StatusSummary) Ready() bool {
	for _, r := range s.Preflight {
		if !r.Passed {
			return false
		}
	}
	for _, h := range s.StageHealth {
		if !h.Ready {
			return false
		}
	}
	return true
}

// Status runs the preflight checks and collects stage health without
// touching the dataset.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	summary := StatusSummary{Preflight: preflight.RunAll(ctx, m.layout)}
	for _, h := range m.stages {
		summary.StageHealth = append(summary.StageHealth, h.HealthCheck(ctx))
	}
	return summary
}
