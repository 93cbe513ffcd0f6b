package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-modifier-mcp/internal/apperrors"
)

// createInMemoryImage creates a solid in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 128} // Half-transparent blue bottom-left
			} else {
				c = color.NRGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode_PNG(t *testing.T) {
	data := encodePNG(t, createPatternImage(40, 30))

	buf, err := Decode(data, 0)
	require.NoError(t, err)
	assert.Equal(t, 40, buf.Width())
	assert.Equal(t, 30, buf.Height())
	assert.Equal(t, FormatRGBA8, buf.Format())
	assert.Equal(t, "RGBA8", buf.Format().String())

	// Straight alpha survives decoding untouched.
	assert.Equal(t, color.NRGBA{0, 0, 255, 128}, buf.Image().NRGBAAt(0, 29))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, buf.Image().NRGBAAt(0, 0))
}

func TestDecode_JPEG(t *testing.T) {
	var enc bytes.Buffer
	require.NoError(t, jpeg.Encode(&enc, createInMemoryImage(64, 48, color.RGBA{200, 10, 10, 255}), nil))

	buf, err := Decode(enc.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, 64, buf.Width())
	assert.Equal(t, 48, buf.Height())
}

func TestDecode_GIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{color.Black, color.White})
	var enc bytes.Buffer
	require.NoError(t, gif.Encode(&enc, pal, nil))

	buf, err := Decode(enc.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, 8, buf.Width())
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not an image", []byte("not an image")},
		{"truncated png", encodePNG(t, createInMemoryImage(10, 10, color.White))[:40]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, 0)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindDecode, apperrors.KindOf(err))
			assert.False(t, apperrors.IsFatal(err))
		})
	}
}

func TestDecode_PixelBudget(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(100, 100, color.White))

	_, err := Decode(data, 100*100-1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindResourceExhausted, apperrors.KindOf(err))
	assert.True(t, apperrors.IsFatal(err))

	buf, err := Decode(data, 100*100)
	require.NoError(t, err)
	assert.Equal(t, 100, buf.Width())
}

func TestPixelBuffer_Release(t *testing.T) {
	buf := newPixelBuffer(createInMemoryImage(4, 4, color.White))
	assert.False(t, buf.Released())

	buf.Release()
	assert.True(t, buf.Released())
	assert.Nil(t, buf.Image())
	assert.Zero(t, buf.Width())
	assert.Zero(t, buf.Height())

	// Second release is a no-op.
	buf.Release()
	assert.True(t, buf.Released())
}

func TestToNRGBA_NonZeroOrigin(t *testing.T) {
	src := createPatternImage(20, 20)
	sub := src.SubImage(image.Rect(10, 10, 20, 20)).(*image.NRGBA)

	out := toNRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(0, 0))
}
