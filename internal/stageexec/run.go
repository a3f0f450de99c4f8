package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/ledger"
	"dataprep/internal/logging"
	"dataprep/internal/stage"
)

// Options controls stage execution and ledger persistence behavior.
type Options struct {
	Logger  *slog.Logger
	Store   *ledger.Store
	Handler stage.Handler
	Run     *dataset.Run
}

// Run executes one stage against a run, recording a stage event and every
// placement the stage reports. The stage error is returned unchanged.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return errors.New("stage handler unavailable")
	}
	if opts.Store == nil {
		return errors.New("ledger store is required")
	}
	if opts.Run == nil {
		return errors.New("run is required")
	}

	name := opts.Handler.Name()
	stageCtx := logging.WithStage(logging.WithRunID(ctx, opts.Run.ID), name)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("root", opts.Run.Layout.Root),
	)

	eventID, err := opts.Store.StartStage(stageCtx, opts.Run.ID, name)
	if err != nil {
		return fmt.Errorf("persist stage start: %w", err)
	}

	started := time.Now()
	mark := len(opts.Run.Placements)

	stageErr := opts.Handler.Prepare(stageCtx, opts.Run)
	if stageErr == nil {
		stageErr = opts.Handler.Execute(stageCtx, opts.Run)
	}

	placements := opts.Run.PlacementsSince(mark)
	if err := opts.Store.RecordPlacements(context.WithoutCancel(stageCtx), toLedger(opts.Run.ID, placements)); err != nil {
		stageLogger.Error("failed to persist placements", logging.Error(err))
		if stageErr == nil {
			stageErr = fmt.Errorf("persist placements: %w", err)
		}
	}

	if stageErr != nil {
		return handleFailure(stageCtx, stageLogger, opts.Store, eventID, stageErr)
	}

	if err := opts.Store.FinishStage(stageCtx, eventID, ledger.StatusCompleted, summarize(placements)); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("placements", len(placements)),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return nil
}

func handleFailure(ctx context.Context, logger *slog.Logger, store *ledger.Store, eventID int64, stageErr error) error {
	status := faults.FailureStatus(stageErr)
	message := strings.TrimSpace(stageErr.Error())

	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(status)),
		logging.String(logging.FieldErrorHint, hintFor(stageErr)),
		logging.Error(stageErr),
	)
	// The stage context may already be cancelled; the failure still has to land.
	if err := store.FinishStage(context.WithoutCancel(ctx), eventID, status, message); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	return stageErr
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "run interrupted; inspect the root before rerunning"
	case errors.Is(err, faults.ErrConflict):
		return "destination already populated; enable layout.overwrite_on_move or clean the output directory"
	case errors.Is(err, faults.ErrNotFound):
		return "expected directory missing; the root is likely from a partial run"
	case errors.Is(err, faults.ErrValidation), errors.Is(err, faults.ErrConfiguration):
		return "check configuration values and input files"
	default:
		return "check file permissions and free space under the root"
	}
}

func toLedger(runID string, placements []dataset.Placement) []ledger.Placement {
	if len(placements) == 0 {
		return nil
	}
	out := make([]ledger.Placement, 0, len(placements))
	for _, p := range placements {
		out = append(out, ledger.Placement{RunID: runID, Stage: p.Stage, Split: p.Split, Label: p.Label, File: p.File})
	}
	return out
}

func summarize(placements []dataset.Placement) string {
	if len(placements) == 0 {
		return ""
	}
	return fmt.Sprintf("%d files placed", len(placements))
}
