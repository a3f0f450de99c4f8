package imageproc

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"dataprep/internal/faults"
)

type format string

const (
	formatJPEG format = "jpeg"
	formatPNG  format = "png"
	formatBMP  format = "bmp"
	formatTIFF format = "tiff"
)

func formatFor(path string) (format, bool) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "jpg", "jpeg":
		return formatJPEG, true
	case "png":
		return formatPNG, true
	case "bmp":
		return formatBMP, true
	case "tif", "tiff":
		return formatTIFF, true
	default:
		return "", false
	}
}

// Supported reports whether path has an extension the preprocessor can write.
func Supported(path string) bool {
	_, ok := formatFor(path)
	return ok
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, StageName, "open image", path, err)
	}
	defer f.Close()

	// bmp and tiff register their decoders with image on import.
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, StageName, "decode image", path, err)
	}
	return img, nil
}

// writeFile encodes img in the format implied by path and swaps it in with a
// rename from a temp file in the same directory.
func writeFile(path string, img image.Image, jpegQuality int) error {
	f, ok := formatFor(path)
	if !ok {
		return faults.Wrap(faults.ErrValidation, StageName, "encode image",
			fmt.Sprintf("unsupported image extension %q", filepath.Ext(path)), nil)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".preprocess-*"+filepath.Ext(path))
	if err != nil {
		return faults.Wrap(faults.ErrIO, StageName, "create temp file", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	w := bufio.NewWriter(tmp)
	switch f {
	case formatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case formatPNG:
		err = png.Encode(w, img)
	case formatBMP:
		err = bmp.Encode(w, img)
	case formatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return faults.Wrap(faults.ErrIO, StageName, "encode image", path, err)
	}

	if info, statErr := os.Stat(path); statErr == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := os.Rename(tmpName, path); err != nil {
		return faults.Wrap(faults.ErrIO, StageName, "replace image", path, err)
	}
	return nil
}
