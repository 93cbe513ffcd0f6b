package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/image-modifier-mcp/internal/apperrors"
)

// PixelFormat describes the memory layout of a PixelBuffer.
type PixelFormat int

const (
	// FormatRGBA8 stores four 8-bit channels per pixel, non-premultiplied.
	FormatRGBA8 PixelFormat = iota
)

func (f PixelFormat) String() string {
	if f == FormatRGBA8 {
		return "RGBA8"
	}
	return "unknown"
}

// DefaultMaxPixels is the decode budget used when none is configured.
const DefaultMaxPixels = 100_000_000

// ErrReleased is returned when a stage receives a buffer that was already
// handed off to a successor.
var ErrReleased = errors.New("pixel buffer already released")

// PixelBuffer owns one decoded frame.
//
// A buffer has exactly one owner. Every stage that consumes a buffer
// releases it once its own output exists, so at most two frames are live at
// any point of the pipeline. After Release the buffer reports zero size and
// Image returns nil.
type PixelBuffer struct {
	img *image.NRGBA
}

func newPixelBuffer(img *image.NRGBA) *PixelBuffer {
	return &PixelBuffer{img: img}
}

// Width returns the frame width in pixels.
func (b *PixelBuffer) Width() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (b *PixelBuffer) Height() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dy()
}

// Format returns the pixel layout.
func (b *PixelBuffer) Format() PixelFormat { return FormatRGBA8 }

// Image exposes the frame for reading. It returns nil after Release.
func (b *PixelBuffer) Image() *image.NRGBA { return b.img }

// Released reports whether the buffer has given up its pixels.
func (b *PixelBuffer) Released() bool { return b.img == nil }

// Release drops the pixel data. It is safe to call more than once.
func (b *PixelBuffer) Release() { b.img = nil }

// take returns the frame or ErrReleased.
func (b *PixelBuffer) take(op string) (*image.NRGBA, error) {
	if b == nil || b.img == nil {
		return nil, apperrors.Wrap(apperrors.KindTransform, op, ErrReleased)
	}
	return b.img, nil
}

// Decode turns encoded image bytes into a PixelBuffer.
//
// The declared dimensions are checked against maxPixels before any pixel
// memory is allocated; an oversized frame fails with a resource-exhausted
// error, which callers must treat as fatal. A maxPixels of zero or less
// selects DefaultMaxPixels.
//
// Supported formats are JPEG, PNG, GIF, BMP, TIFF and WebP.
func Decode(data []byte, maxPixels int) (*PixelBuffer, error) {
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.KindDecode, "decode image", "empty image data")
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "decode image", errors.Wrap(err, "failed to read image header"))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperrors.New(apperrors.KindDecode, "decode image",
			fmt.Sprintf("invalid %s dimensions %dx%d", format, cfg.Width, cfg.Height))
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, apperrors.New(apperrors.KindResourceExhausted, "decode image",
			fmt.Sprintf("%s image %dx%d exceeds the %d pixel budget", format, cfg.Width, cfg.Height, maxPixels))
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "decode image", errors.Wrapf(err, "failed to decode %s image", format))
	}

	return newPixelBuffer(toNRGBA(img)), nil
}

// toNRGBA returns img as a zero-origin NRGBA frame, copying only when the
// decoder produced another layout.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
