package imagepkg

import (
	"context"
	"fmt"
	"image"

	"github.com/bharatheritage/tryon/internal/util"
)

// DownloadImage downloads an image from url and decodes it.
func DownloadImage(ctx context.Context, url string) (image.Image, error) {
	body, err := util.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := DecodeBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return img, nil
}
