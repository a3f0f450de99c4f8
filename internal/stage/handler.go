package stage

import (
	"context"
	"log/slog"

	"dataprep/internal/dataset"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Name() string
	Prepare(context.Context, *dataset.Run) error
	Execute(context.Context, *dataset.Run) error
	HealthCheck(context.Context) Health
}

// LoggerAware is implemented by handlers that accept a per-run logger
// carrying run and stage fields.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
