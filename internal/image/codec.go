package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Decode reads a JPEG, PNG, GIF, BMP or TIFF image and applies its EXIF
// orientation so phone photos come out upright.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func DecodeBytes(b []byte) (image.Image, error) {
	return Decode(bytes.NewReader(b))
}

func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
