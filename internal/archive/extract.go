package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dataprep/internal/faults"
)

// Result summarizes what Extract wrote.
type Result struct {
	Files []string // paths relative to the destination, slash separated
	Dirs  int
	Bytes int64
}

// Extract writes every entry of the zip at archivePath below dest, creating
// directories as needed. Entries that would land outside dest are rejected.
func Extract(ctx context.Context, archivePath, dest string) (Result, error) {
	var result Result

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if zr != nil {
			_ = zr.Close()
		}
		if errors.Is(err, fs.ErrNotExist) {
			return result, faults.Wrap(faults.ErrNotFound, "extract", "open archive", archivePath, err)
		}
		return result, faults.Wrap(faults.ErrValidation, "extract", "open archive", archivePath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return result, faults.Wrap(faults.ErrIO, "extract", "create destination", dest, err)
	}

	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		target, err := entryPath(dest, file.Name)
		if err != nil {
			return result, err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return result, faults.Wrap(faults.ErrIO, "extract", "create directory", target, err)
			}
			result.Dirs++
			continue
		}
		if !file.Mode().IsRegular() {
			continue
		}
		written, err := writeEntry(file, target)
		if err != nil {
			return result, faults.Wrap(faults.ErrIO, "extract", "write entry", file.Name, err)
		}
		rel, _ := filepath.Rel(dest, target)
		result.Files = append(result.Files, filepath.ToSlash(rel))
		result.Bytes += written
	}
	return result, nil
}

func entryPath(dest, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", faults.Wrap(faults.ErrValidation, "extract", "resolve entry",
			fmt.Sprintf("entry %q escapes destination", name), nil)
	}
	return filepath.Join(dest, cleaned), nil
}

func writeEntry(file *zip.File, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	rc, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(out, rc)
	if err != nil {
		_ = out.Close()
		return written, err
	}
	return written, out.Close()
}
