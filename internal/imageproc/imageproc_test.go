package imageproc_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"dataprep/internal/dataset"
	"dataprep/internal/faults"
	"dataprep/internal/imageproc"
	"dataprep/internal/testsupport"
)

var defaults = imageproc.Params{Threshold: 125, MaxValue: 300, CropTop: 30, CropLeft: 30}

func solid(c color.Color) testsupport.Pixel {
	return func(int, int) color.Color { return c }
}

func TestTransformThresholdAndCrop(t *testing.T) {
	cases := []struct {
		name string
		fill color.Color
		want uint8
	}{
		{name: "red below threshold", fill: color.RGBA{R: 255, A: 255}, want: 0},
		{name: "green above threshold", fill: color.RGBA{G: 255, A: 255}, want: 255},
		{name: "blue below threshold", fill: color.RGBA{B: 255, A: 255}, want: 0},
		{name: "white", fill: color.White, want: 255},
		{name: "exact threshold stays dark", fill: color.Gray{Y: 125}, want: 0},
		{name: "just above threshold", fill: color.Gray{Y: 126}, want: 255},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, 64, 48))
			for y := 0; y < 48; y++ {
				for x := 0; x < 64; x++ {
					src.Set(x, y, tc.fill)
				}
			}
			out, err := imageproc.Transform(src, defaults)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if b := out.Bounds(); b.Dx() != 34 || b.Dy() != 18 {
				t.Fatalf("bounds = %v, want 34x18", b)
			}
			for _, v := range out.Pix {
				if v != tc.want {
					t.Fatalf("pixel = %d, want %d", v, tc.want)
				}
			}
		})
	}
}

func TestTransformCropsTopLeftOnly(t *testing.T) {
	// Left half dark, right half bright; after cropping 30 columns the
	// dark band shrinks from 50 to 20 columns.
	src := image.NewGray(image.Rect(0, 0, 100, 40))
	for y := 0; y < 40; y++ {
		for x := 50; x < 100; x++ {
			src.SetGray(x, y, color.Gray{Y: 200})
		}
	}
	out, err := imageproc.Transform(src, defaults)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out.GrayAt(19, 0).Y != 0 || out.GrayAt(20, 0).Y != 255 {
		t.Fatalf("unexpected crop offset: col19=%d col20=%d", out.GrayAt(19, 0).Y, out.GrayAt(20, 0).Y)
	}
	if out.GrayAt(69, 9).Y != 255 {
		t.Fatalf("right edge lost")
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	testsupport.WriteImage(t, path, 80, 60, testsupport.Gradient(80))
	img := testsupport.ReadImage(t, path)

	first, err := imageproc.Transform(img, defaults)
	if err != nil {
		t.Fatal(err)
	}
	second, err := imageproc.Transform(img, defaults)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatalf("transform not deterministic")
	}
}

func TestTransformRejectsSmallImages(t *testing.T) {
	_, err := imageproc.Transform(image.NewGray(image.Rect(0, 0, 30, 100)), defaults)
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProcessFileTwiceShrinks(t *testing.T) {
	for _, name := range []string{"a0.png", "b1.jpg", "c0.bmp", "d1.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			testsupport.WriteImage(t, path, 100, 90, testsupport.Gradient(100))

			if err := imageproc.ProcessFile(path, defaults, 95); err != nil {
				t.Fatalf("first pass: %v", err)
			}
			if b := testsupport.ReadImage(t, path).Bounds(); b.Dx() != 70 || b.Dy() != 60 {
				t.Fatalf("after first pass bounds = %v, want 70x60", b)
			}
			if err := imageproc.ProcessFile(path, defaults, 95); err != nil {
				t.Fatalf("second pass: %v", err)
			}
			if b := testsupport.ReadImage(t, path).Bounds(); b.Dx() != 40 || b.Dy() != 30 {
				t.Fatalf("after second pass bounds = %v, want 40x30", b)
			}

			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Fatalf("temp files left behind: %v", entries)
			}
		})
	}
}

func TestProcessFileCorruptImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken0.jpg")
	testsupport.WriteFile(t, path, 128)
	if err := imageproc.ProcessFile(path, defaults, 95); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPreprocessorStage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCrop(10, 20))
	paths := testsupport.LocalLayout(t, cfg)
	for _, rel := range []string{"train/class_a/a0.png", "train/class_b/b1.png", "test/class_a/c0.png"} {
		testsupport.WriteImage(t, filepath.Join(paths.DataDir, rel), 64, 64, nil)
	}
	// Files directly in a split are outside the class level and untouched.
	testsupport.WriteFile(t, filepath.Join(paths.DataDir, "train", "stray.txt"), 4)
	run := dataset.NewRun("run-preprocess", paths)

	handler := imageproc.NewPreprocessor(cfg, nil)
	if err := handler.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(run.Placements) != 3 {
		t.Fatalf("placements = %d, want 3", len(run.Placements))
	}
	img := testsupport.ReadImage(t, filepath.Join(paths.DataDir, "train", "class_a", "a0.png"))
	if b := img.Bounds(); b.Dx() != 44 || b.Dy() != 54 {
		t.Fatalf("bounds = %v, want 44x54", b)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Fatalf("expected grayscale output, got %T", img)
	}
}

func TestProcessFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes0.gif")
	testsupport.WriteFile(t, path, 16)
	if imageproc.Supported(path) {
		t.Fatal("gif reported as supported")
	}
	if err := imageproc.ProcessFile(path, defaults, 95); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
