package imageproc

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"dataprep/internal/faults"
)

// Params holds the transform constants.
type Params struct {
	Threshold int
	// MaxValue is written for pixels above Threshold, saturated to 255.
	MaxValue int
	CropTop  int
	CropLeft int
}

// Transform converts img to 8-bit grayscale, binarizes it against
// p.Threshold and drops p.CropTop rows and p.CropLeft columns from the top
// and left edges.
func Transform(img image.Image, p Params) (*image.Gray, error) {
	b := img.Bounds()
	if b.Dx() <= p.CropLeft || b.Dy() <= p.CropTop {
		return nil, faults.Wrap(faults.ErrValidation, StageName, "crop",
			fmt.Sprintf("image %dx%d not larger than crop margins top=%d left=%d", b.Dx(), b.Dy(), p.CropTop, p.CropLeft), nil)
	}

	high := uint8(min(max(p.MaxValue, 0), 255))
	binary := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := binary.Pix[(y-b.Min.Y)*binary.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if int(luma(img, x, y)) > p.Threshold {
				row[x-b.Min.X] = high
			} else {
				row[x-b.Min.X] = 0
			}
		}
	}

	cropped := image.NewGray(image.Rect(0, 0, b.Dx()-p.CropLeft, b.Dy()-p.CropTop))
	draw.Draw(cropped, cropped.Bounds(), binary, image.Pt(p.CropLeft, p.CropTop), draw.Src)
	return cropped, nil
}

// luma returns the BT.601 weighted grey level of the pixel, rounded, in
// 14-bit fixed point on 8-bit channels.
func luma(img image.Image, x, y int) uint8 {
	if g, ok := img.(*image.Gray); ok {
		return g.GrayAt(x, y).Y
	}
	r, g, b, _ := img.At(x, y).RGBA()
	r8, g8, b8 := r>>8, g>>8, b>>8
	return uint8((4899*r8 + 9617*g8 + 1868*b8 + 8192) >> 14)
}
