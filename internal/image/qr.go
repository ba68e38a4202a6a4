package imagepkg

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	MinQRSize     = 64
	MaxQRSize     = 1024
	DefaultQRSize = 256
)

// GenerateQRPNG returns a PNG QR code encoding text, size pixels square.
// The size is clamped to [MinQRSize, MaxQRSize].
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if text == "" {
		return nil, errors.New("qr: empty text")
	}
	size = min(max(size, MinQRSize), MaxQRSize)
	return qrcode.Encode(text, qrcode.Medium, size)
}
