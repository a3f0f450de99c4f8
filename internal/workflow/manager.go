package workflow

import (
	"errors"
	"log/slog"

	"github.com/gofrs/flock"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/ledger"
	"dataprep/internal/logging"
	"dataprep/internal/stage"
)

// ErrUnknownStage is returned by RunStage for names outside the pipeline.
var ErrUnknownStage = errors.New("unknown stage")

// Manager coordinates one pipeline execution against a dataset root.
type Manager struct {
	cfg    *config.Config
	store  *ledger.Store
	layout dataset.Layout
	logger *slog.Logger
	lock   *flock.Flock

	stages        []stage.Handler
	skipPreflight bool
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithStages replaces the default handlers (used in tests).
func WithStages(set StageSet) ManagerOption {
	return func(m *Manager) {
		m.stages = set.ordered()
	}
}

// WithoutPreflight skips the filesystem checks before a full run.
func WithoutPreflight() ManagerOption {
	return func(m *Manager) {
		m.skipPreflight = true
	}
}

// NewManager constructs a workflow manager for the layout.
func NewManager(cfg *config.Config, store *ledger.Store, layout dataset.Layout, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		store:  store,
		layout: layout,
		logger: logging.NewComponentLogger(logger, "workflow"),
		lock:   flock.New(layout.LockPath()),
	}
	m.stages = DefaultStages(cfg, logger).ordered()
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stages returns the stage names in pipeline order.
func (m *Manager) Stages() []string {
	names := make([]string, 0, len(m.stages))
	for _, h := range m.stages {
		names = append(names, h.Name())
	}
	return names
}

func (m *Manager) stageByName(name string) (stage.Handler, bool) {
	for _, h := range m.stages {
		if h.Name() == name {
			return h, true
		}
	}
	return nil, false
}
