// Package qrdecode extracts QR code contents from still images uploaded
// by the check-in scanner when no live camera is available.
package qrdecode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	tuotoo "github.com/tuotoo/qrcode"
)

var ErrNoQRCode = errors.New("no QR code recognized in image")

// Decode tries the zxing port first and falls back to the second decoder
// before giving up. Some phone-camera shots decode with one but not the
// other.
func Decode(data []byte) (string, error) {
	if content, err := decodeZxing(data); err == nil {
		return content, nil
	}

	if content, err := decodeTuotoo(data); err == nil {
		return content, nil
	}

	return "", ErrNoQRCode
}

func decodeZxing(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("image.Decode -> %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("gozxing.NewBinaryBitmapFromImage -> %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("qrReader.Decode -> %w", err)
	}

	return result.GetText(), nil
}

func decodeTuotoo(data []byte) (string, error) {
	matrix, err := tuotoo.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("qrcode.Decode -> %w", err)
	}

	return matrix.Content, nil
}
