package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestCompressShrinksOversizedImages(t *testing.T) {
	data := encodePNG(t, 4000, 2000)

	out, err := Compress(data, MaxDimension)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, img.Bounds().Dx(), MaxDimension)
	assert.LessOrEqual(t, img.Bounds().Dy(), MaxDimension)
}

func TestCompressKeepsSmallImagesDimensions(t *testing.T) {
	data := encodePNG(t, 300, 200)

	out, err := Compress(data, MaxDimension)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestCompressRejectsGarbage(t *testing.T) {
	_, err := Compress([]byte("definitely not an image"), MaxDimension)

	assert.Error(t, err)
}
