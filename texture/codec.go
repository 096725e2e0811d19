package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errEmptyData = errors.New("empty texture data")

// Decode decodes encoded texture data. png, jpeg, gif, bmp, tiff and webp are supported.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errEmptyData
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding texture: %w", err)
	}
	return img, format, nil
}

// DecodeConfig returns the dimensions of encoded texture data without decoding pixels.
func DecodeConfig(data []byte) (width, height int, err error) {
	if len(data) == 0 {
		return 0, 0, errEmptyData
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// EncodePNG encodes img as PNG. Compositing results are always stored as PNG
// so channel values round trip exactly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
