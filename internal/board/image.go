package board

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImageDim caps the longer side of a loaded background.
const DefaultMaxImageDim = 1200

// FitWithin scales w×h down, preserving aspect ratio, until neither side
// exceeds maxDim. Sizes already within the cap are returned unchanged.
func FitWithin(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	ratio := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
	return max(int(math.Floor(float64(w)*ratio)), 1), max(int(math.Floor(float64(h)*ratio)), 1)
}

// DecodeImage reads a PNG, JPEG, GIF, BMP or WebP image.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("decode: %w", ErrUnsupportedImage)
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("decode: empty image: %w", ErrUnsupportedImage)
	}
	return img, nil
}
