// Package imaging bounds uploaded proof screenshots to a sane size
// before they are stored.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

const (
	// MaxDimension caps the longer side of a stored proof image.
	MaxDimension = 1280

	jpegQuality = 80
)

// Compress decodes the image, shrinks it so neither side exceeds maxDim
// and re-encodes it as JPEG. Images already within bounds are still
// re-encoded, which normalizes oversized PNG screenshots.
func Compress(data []byte, maxDim uint) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image.Decode -> %w", err)
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) > maxDim || uint(bounds.Dy()) > maxDim {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("jpeg.Encode -> %w", err)
	}

	return buf.Bytes(), nil
}
