package layout

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/fileutil"
)

// Flatten moves every regular file found in a subdirectory of each split
// directory under root up into the split directory itself. Listings are taken
// before anything moves. Emptied subdirectories are left in place. When
// overwrite is false an existing destination aborts with ErrConflict.
func Flatten(ctx context.Context, root string, overwrite bool) ([]dataset.Placement, error) {
	splits, err := splitDirs(root, FlattenStage)
	if err != nil {
		return nil, err
	}

	var placements []dataset.Placement
	for _, split := range splits {
		splitDir := filepath.Join(root, split)
		subdirs, err := fileutil.Subdirectories(splitDir)
		if err != nil {
			return placements, faults.Wrap(faults.ErrIO, FlattenStage, "list subdirectories", splitDir, err)
		}
		for _, sub := range subdirs {
			subDir := filepath.Join(splitDir, sub)
			files, err := fileutil.RegularFiles(subDir)
			if err != nil {
				return placements, faults.Wrap(faults.ErrIO, FlattenStage, "list files", subDir, err)
			}
			for _, name := range files {
				if err := ctx.Err(); err != nil {
					return placements, err
				}
				err := fileutil.MoveFile(filepath.Join(subDir, name), filepath.Join(splitDir, name), overwrite)
				if errors.Is(err, fileutil.ErrDestinationExists) {
					return placements, faults.Wrap(faults.ErrConflict, FlattenStage, "move file", split+"/"+name, err)
				}
				if err != nil {
					return placements, faults.Wrap(faults.ErrIO, FlattenStage, "move file", split+"/"+name, err)
				}
				placements = append(placements, dataset.Placement{Stage: FlattenStage, Split: split, File: name})
			}
		}
	}
	return placements, nil
}

// RemoveNested deletes root/<split>/<nested> recursively for every split
// directory. A split without the nested directory is an ErrNotFound failure.
func RemoveNested(ctx context.Context, root, nested string) ([]string, error) {
	splits, err := splitDirs(root, CleanStage)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, split := range splits {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		target := filepath.Join(root, split, nested)
		info, err := os.Stat(target)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return removed, faults.Wrap(faults.ErrNotFound, CleanStage, "remove nested directory", target, err)
			}
			return removed, faults.Wrap(faults.ErrIO, CleanStage, "remove nested directory", target, err)
		}
		if !info.IsDir() {
			return removed, faults.Wrap(faults.ErrValidation, CleanStage, "remove nested directory", target+" is not a directory", nil)
		}
		if err := os.RemoveAll(target); err != nil {
			return removed, faults.Wrap(faults.ErrIO, CleanStage, "remove nested directory", target, err)
		}
		removed = append(removed, target)
	}
	return removed, nil
}

// Promote deletes dataDir and renames outputDir to take its place.
func Promote(dataDir, outputDir string) error {
	info, err := os.Stat(outputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return faults.Wrap(faults.ErrNotFound, PromoteStage, "locate output", outputDir, err)
		}
		return faults.Wrap(faults.ErrIO, PromoteStage, "locate output", outputDir, err)
	}
	if !info.IsDir() {
		return faults.Wrap(faults.ErrValidation, PromoteStage, "locate output", outputDir+" is not a directory", nil)
	}
	if err := os.RemoveAll(dataDir); err != nil {
		return faults.Wrap(faults.ErrIO, PromoteStage, "delete data directory", dataDir, err)
	}
	if err := os.Rename(outputDir, dataDir); err != nil {
		return faults.Wrap(faults.ErrIO, PromoteStage, "rename output", outputDir, err)
	}
	return nil
}

func splitDirs(root, stageName string) ([]string, error) {
	splits, err := fileutil.Subdirectories(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrNotFound, stageName, "list splits", root, err)
		}
		return nil, faults.Wrap(faults.ErrIO, stageName, "list splits", root, err)
	}
	return splits, nil
}
