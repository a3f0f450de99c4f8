package preflight

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for the layout. The free space check needs the
// archive size, so it only runs when the archive check passed.
func RunAll(ctx context.Context, layout dataset.Layout) []Result {
	results := []Result{CheckDirectoryAccess("Root directory", layout.Root)}

	if _, err := os.Stat(layout.StateDir); err == nil {
		results = append(results, CheckDirectoryAccess("State directory", layout.StateDir))
	}

	archive, info := CheckArchive(ctx, layout.Archive)
	results = append(results, archive)
	if archive.Passed {
		// The splitter copies by default, so the tree exists twice at peak.
		results = append(results, CheckFreeSpace("Free space", layout.Root, info.UncompressedBytes*2))
	}
	return results
}

// Err folds failed results into one validation error, or nil if all passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return faults.Wrap(faults.ErrValidation, "preflight", "check", strings.Join(failed, "; "), nil)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
