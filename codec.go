package xltrack

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo describes decoded image bytes.
type ImageInfo struct {
	Width  int
	Height int
	Format string // lower-case codec name: "png", "jpeg", "gif", "bmp", "tiff", "webp"
}

// ImageCodec decodes image headers and transcodes images the grid cannot embed.
type ImageCodec interface {
	Decode(data []byte) (ImageInfo, error)
	Reencode(data []byte, format string) ([]byte, error)
}

// embeddable maps formats that can be embedded as-is to their file extension.
var embeddable = map[string]string{
	"jpeg": ".jpg",
	"jpg":  ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"bmp":  ".bmp",
	"tiff": ".tiff",
	"tif":  ".tiff",
}

// stdCodec implements ImageCodec with the image package and golang.org/x/image decoders.
type stdCodec struct{}

// NewImageCodec returns the default codec.
func NewImageCodec() ImageCodec {
	return stdCodec{}
}

func (stdCodec) Decode(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decode image: %w", err)
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Reencode decodes data and writes it back in format. Only PNG output is supported.
func (stdCodec) Reencode(data []byte, format string) ([]byte, error) {
	if !strings.EqualFold(format, "png") {
		return nil, fmt.Errorf("reencode to %q: unsupported target format", format)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
