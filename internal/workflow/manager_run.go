package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dataprep/internal/config"
	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/ledger"
	"dataprep/internal/logging"
	"dataprep/internal/preflight"
	"dataprep/internal/stage"
	"dataprep/internal/stageexec"
)

// Run executes every stage in order. The first failing stage aborts the run;
// nothing is rolled back.
func (m *Manager) Run(ctx context.Context) (*dataset.Run, error) {
	return m.execute(ctx, m.stages, !m.skipPreflight)
}

// RunStage executes a single named stage as its own run.
func (m *Manager) RunStage(ctx context.Context, name string) (*dataset.Run, error) {
	handler, ok := m.stageByName(strings.TrimSpace(name))
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownStage, name, strings.Join(m.Stages(), ", "))
	}
	return m.execute(ctx, []stage.Handler{handler}, false)
}

func (m *Manager) execute(ctx context.Context, handlers []stage.Handler, checks bool) (*dataset.Run, error) {
	if m.store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}

	release, err := m.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	if checks {
		if err := m.runPreflightChecks(ctx); err != nil {
			return nil, err
		}
	}

	run := dataset.NewRun(uuid.NewString(), m.layout)
	runCtx := logging.WithRunID(ctx, run.ID)
	logger := logging.WithContext(runCtx, m.logger)

	if _, err := m.store.BeginRun(runCtx, run.ID, m.layout.Environment, m.layout.Root); err != nil {
		return nil, fmt.Errorf("record run start: %w", err)
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String(logging.FieldEnvironment, m.layout.Environment),
		logging.String("root", m.layout.Root),
		logging.Int("stages", len(handlers)),
	)

	started := time.Now()
	for _, handler := range handlers {
		err := stageexec.Run(runCtx, stageexec.Options{
			Logger:  m.logger,
			Store:   m.store,
			Handler: handler,
			Run:     run,
		})
		if err != nil {
			m.finish(runCtx, run.ID, faults.FailureStatus(err), err.Error())
			logger.Error("run failed",
				logging.String(logging.FieldEventType, "run_failure"),
				logging.String(logging.FieldStage, handler.Name()),
				logging.String(logging.FieldImpact, "root left in the state reached by earlier stages"),
				logging.Error(err),
			)
			return run, err
		}
	}

	m.finish(runCtx, run.ID, ledger.StatusCompleted, "")
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("placements", len(run.Placements)),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return run, nil
}

func (m *Manager) finish(ctx context.Context, id string, status ledger.Status, message string) {
	if err := m.store.FinishRun(context.WithoutCancel(ctx), id, status, message); err != nil {
		m.logger.Error("failed to record run result", logging.String(logging.FieldRunID, id), logging.Error(err))
	}
}

func (m *Manager) acquire() (func(), error) {
	if err := config.EnsureStateDir(m.layout); err != nil {
		return nil, err
	}
	ok, err := m.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrConflict, "workflow", "acquire lock",
			"another dataprep run holds "+m.lock.Path(), nil)
	}
	return func() {
		if err := m.lock.Unlock(); err != nil {
			m.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}, nil
}

// runPreflightChecks validates the root before anything is written.
func (m *Manager) runPreflightChecks(ctx context.Context) error {
	results := preflight.RunAll(ctx, m.layout)
	for _, r := range results {
		if r.Passed {
			m.logger.Info("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
			continue
		}
		m.logger.Error("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "fix the reported issue and rerun"),
		)
	}
	return preflight.Err(results)
}
