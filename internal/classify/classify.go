package classify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/fileutil"
	"dataprep/internal/logging"
)

// Rule maps a file name to one of two class labels.
type Rule struct {
	ClassA string
	ClassB string
	// SuffixA selects class A when the base name ends with it.
	SuffixA string
}

// Label returns ClassA when the base name of name ends with SuffixA and
// ClassB otherwise.
func (r Rule) Label(name string) string {
	if r.SuffixA != "" && strings.HasSuffix(filepath.Base(name), r.SuffixA) {
		return r.ClassA
	}
	return r.ClassB
}

// Labels returns both class directory names, A first.
func (r Rule) Labels() []string {
	return []string{r.ClassA, r.ClassB}
}

// Partition creates the class directories inside every split directory under
// root and moves each regular file sitting directly in a split directory into
// the class directory its name selects. A class directory that already exists
// is logged and reused. Running it twice moves nothing the second time.
func Partition(ctx context.Context, root string, rule Rule, overwrite bool, logger *slog.Logger) ([]dataset.Placement, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	splits, err := fileutil.Subdirectories(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrNotFound, StageName, "list splits", root, err)
		}
		return nil, faults.Wrap(faults.ErrIO, StageName, "list splits", root, err)
	}

	var placements []dataset.Placement
	for _, split := range splits {
		splitDir := filepath.Join(root, split)
		for _, label := range rule.Labels() {
			if err := ensureClassDir(filepath.Join(splitDir, label), logger); err != nil {
				return placements, err
			}
		}

		files, err := fileutil.RegularFiles(splitDir)
		if err != nil {
			return placements, faults.Wrap(faults.ErrIO, StageName, "list files", splitDir, err)
		}
		for _, name := range files {
			if err := ctx.Err(); err != nil {
				return placements, err
			}
			label := rule.Label(name)
			err := fileutil.MoveFile(filepath.Join(splitDir, name), filepath.Join(splitDir, label, name), overwrite)
			if errors.Is(err, fileutil.ErrDestinationExists) {
				return placements, faults.Wrap(faults.ErrConflict, StageName, "move file", split+"/"+name, err)
			}
			if err != nil {
				return placements, faults.Wrap(faults.ErrIO, StageName, "move file", split+"/"+name, err)
			}
			placements = append(placements, dataset.Placement{Stage: StageName, Split: split, Label: label, File: name})
		}
	}
	return placements, nil
}

func ensureClassDir(dir string, logger *slog.Logger) error {
	err := os.Mkdir(dir, 0o755)
	if err == nil {
		logger.Debug("created class directory", logging.String("path", dir))
		return nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return faults.Wrap(faults.ErrIO, StageName, "create class directory", dir, err)
	}
	if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
		return faults.Wrap(faults.ErrConflict, StageName, "create class directory",
			fmt.Sprintf("%s exists and is not a directory", dir), nil)
	}
	logging.WarnWithContext(logger, "class directory already exists", "class_dir_exists",
		logging.String("path", dir),
		logging.String(logging.FieldImpact, "existing directory reused"),
	)
	return nil
}
