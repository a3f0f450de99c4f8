// Package imageproc applies the fixed preprocessing transform to every image
// of a prepared dataset tree: grayscale, binary threshold, and a top/left
// crop, written back over the original file.
//
// The transform is not idempotent. Each pass crops the margins again.
package imageproc
