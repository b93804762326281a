package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DecodeImage decodes data and reports the detected format.
func DecodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, "", fmt.Errorf("decode image: empty %s bounds", format)
	}
	return img, format, nil
}

// Image fetches and decodes the image behind ref.
func (f *Fetcher) Image(ctx context.Context, ref string) (image.Image, error) {
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err := DecodeImage(data)
	return img, err
}
