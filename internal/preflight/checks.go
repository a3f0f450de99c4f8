package preflight

import (
	"archive/zip"
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// ArchiveInfo describes the archive found by CheckArchive.
type ArchiveInfo struct {
	Entries           int
	UncompressedBytes uint64
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckArchive verifies the archive is readable and a valid zip, and reports
// how much data extraction will write.
func CheckArchive(ctx context.Context, path string) (Result, ArchiveInfo) {
	const name = "Archive"
	var info ArchiveInfo

	if !exists(path) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, info
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}, info
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		if zr != nil {
			_ = zr.Close()
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: invalid zip: %v)", path, err)}, info
	}
	defer zr.Close()

	for _, f := range zr.File {
		if ctx.Err() != nil {
			return Result{Name: name, Detail: "check cancelled"}, info
		}
		if f.FileInfo().IsDir() {
			continue
		}
		info.Entries++
		info.UncompressedBytes += f.UncompressedSize64
	}
	if info.Entries == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: archive holds no files)", path)}, info
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d files, %s uncompressed)", path, info.Entries, humanize.Bytes(info.UncompressedBytes)),
	}, info
}

// CheckFreeSpace verifies the filesystem holding path has at least need bytes
// available to unprivileged users.
func CheckFreeSpace(name, path string, need uint64) Result {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := st.Bavail * uint64(st.Bsize)
	if free < need {
		return Result{
			Name:   name,
			Detail: fmt.Sprintf("%s free, %s needed", humanize.Bytes(free), humanize.Bytes(need)),
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free, %s needed", humanize.Bytes(free), humanize.Bytes(need))}
}
