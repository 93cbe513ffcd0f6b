package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-modifier-mcp/internal/apperrors"
)

// Transform selects the optional pipeline stages.
type Transform struct {
	// ResizeRatio scales both axes. Only values strictly inside (0,1)
	// enable the resize stage; anything else leaves the size unchanged.
	ResizeRatio float64

	// Grayscale enables the luminance stage.
	Grayscale bool
}

// ResizeEnabled reports whether ratio selects the resize stage.
func ResizeEnabled(ratio float64) bool {
	return ratio > 0 && ratio < 1
}

// Apply runs the pipeline over src: resize first, then grayscale.
//
// src is always consumed. The returned buffer is owned by the caller and is
// never src itself, even when no stage is enabled.
func Apply(src *PixelBuffer, t Transform) (*PixelBuffer, error) {
	if _, err := src.take("transform"); err != nil {
		return nil, err
	}

	cur := src
	ran := false

	if ResizeEnabled(t.ResizeRatio) {
		next, err := Resize(cur, t.ResizeRatio)
		if err != nil {
			cur.Release()
			return nil, err
		}
		cur, ran = next, true
	}

	if t.Grayscale {
		next, err := Grayscale(cur)
		if err != nil {
			cur.Release()
			return nil, err
		}
		cur, ran = next, true
	}

	if !ran {
		return Copy(cur)
	}
	return cur, nil
}

// Copy returns an independent copy of src and releases src.
func Copy(src *PixelBuffer) (*PixelBuffer, error) {
	img, err := src.take("copy")
	if err != nil {
		return nil, err
	}
	out := newPixelBuffer(imaging.Clone(img))
	src.Release()
	return out, nil
}

// Resize scales src by ratio on both axes, truncating the new dimensions,
// and releases src. Ratios outside (0,1) hand src through untouched.
//
// Resampling uses a bilinear filter.
func Resize(src *PixelBuffer, ratio float64) (*PixelBuffer, error) {
	img, err := src.take("resize")
	if err != nil {
		return nil, err
	}
	if !ResizeEnabled(ratio) {
		return src, nil
	}

	w, h := scaledSize(img.Bounds().Dx(), img.Bounds().Dy(), ratio)
	if w <= 0 || h <= 0 {
		return nil, apperrors.New(apperrors.KindTransform, "resize",
			fmt.Sprintf("ratio %g reduces %dx%d to an empty image", ratio, img.Bounds().Dx(), img.Bounds().Dy()))
	}

	out := newPixelBuffer(imaging.Resize(img, w, h, imaging.Linear))
	src.Release()
	return out, nil
}

func scaledSize(w, h int, ratio float64) (int, int) {
	return int(math.Floor(float64(w) * ratio)), int(math.Floor(float64(h) * ratio))
}

// ColorMatrix is a 4x5 affine colour transform in row-major order. Rows
// produce R, G, B and A; columns weight R, G, B, A and add a constant offset
// in 0-255 units.
type ColorMatrix [20]float64

// GrayscaleMatrix maps every colour channel to 0.3R + 0.59G + 0.11B and
// keeps alpha.
var GrayscaleMatrix = ColorMatrix{
	0.3, 0.59, 0.11, 0, 0,
	0.3, 0.59, 0.11, 0, 0,
	0.3, 0.59, 0.11, 0, 0,
	0, 0, 0, 1, 0,
}

const fixedShift = 16

// fixed converts m to 16.16 fixed point. The grayscale weights round to
// coefficients summing to exactly 1<<16, so gray input maps to itself.
func (m ColorMatrix) fixed() [20]int64 {
	var out [20]int64
	for i, v := range m {
		out[i] = int64(math.Round(v * (1 << fixedShift)))
	}
	return out
}

// Grayscale converts src to luminance, keeping alpha, and releases src.
func Grayscale(src *PixelBuffer) (*PixelBuffer, error) {
	img, err := src.take("grayscale")
	if err != nil {
		return nil, err
	}
	out := newPixelBuffer(ApplyColorMatrix(img, GrayscaleMatrix))
	src.Release()
	return out, nil
}

// ApplyColorMatrix writes m applied to every pixel of img into a new frame
// of the same size. Results are truncated toward zero and clamped to 0-255.
func ApplyColorMatrix(img *image.NRGBA, m ColorMatrix) *image.NRGBA {
	fm := m.fixed()
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		off := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		srcRow := img.Pix[off : off+w*4]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]

		for x := 0; x < w*4; x += 4 {
			r := int64(srcRow[x])
			g := int64(srcRow[x+1])
			b := int64(srcRow[x+2])
			a := int64(srcRow[x+3])
			for c := 0; c < 4; c++ {
				row := fm[c*5 : c*5+5]
				v := row[0]*r + row[1]*g + row[2]*b + row[3]*a + row[4]
				dstRow[x+c] = clampChannel(v >> fixedShift)
			}
		}
	}

	return dst
}

func clampChannel(v int64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
