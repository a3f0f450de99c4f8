package imageproc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/fileutil"
	"dataprep/internal/logging"
)

// ProcessFile rewrites the image at path with the transform applied.
func ProcessFile(path string, p Params, jpegQuality int) error {
	if !Supported(path) {
		return faults.Wrap(faults.ErrValidation, StageName, "process image",
			fmt.Sprintf("unsupported image extension %q", filepath.Ext(path)), nil)
	}
	img, err := decodeFile(path)
	if err != nil {
		return err
	}
	out, err := Transform(img, p)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return writeFile(path, out, jpegQuality)
}

// ProcessTree applies ProcessFile to every regular file found at
// root/<split>/<class>/. Entries at other depths are left alone. The first
// failure stops the walk.
func ProcessTree(ctx context.Context, root string, p Params, jpegQuality int, logger *slog.Logger) ([]dataset.Placement, error) {
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

	var processed []dataset.Placement
	for _, split := range splits {
		splitDir := filepath.Join(root, split)
		classes, err := fileutil.Subdirectories(splitDir)
		if err != nil {
			return processed, faults.Wrap(faults.ErrIO, StageName, "list classes", splitDir, err)
		}
		logger.Info("pre-processing split", logging.String("split", split), logging.Int("classes", len(classes)))
		for _, class := range classes {
			classDir := filepath.Join(splitDir, class)
			files, err := fileutil.RegularFiles(classDir)
			if err != nil {
				return processed, faults.Wrap(faults.ErrIO, StageName, "list files", classDir, err)
			}
			for _, name := range files {
				if err := ctx.Err(); err != nil {
					return processed, err
				}
				if err := ProcessFile(filepath.Join(classDir, name), p, jpegQuality); err != nil {
					return processed, err
				}
				processed = append(processed, dataset.Placement{Stage: StageName, Split: split, Label: class, File: name})
			}
		}
	}
	return processed, nil
}
