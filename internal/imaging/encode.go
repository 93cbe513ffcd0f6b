package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/pkg/errors"

	"github.com/ironsheep/image-modifier-mcp/internal/apperrors"
)

// FileURIScheme prefixes every persisted result.
const FileURIScheme = "file://"

var (
	// ErrEmptyEncoding is returned when the codec produced no bytes.
	ErrEmptyEncoding = errors.New("image compression produced no data")

	// ErrFileExists is returned when the output file is already present.
	ErrFileExists = errors.New("image file already exists")

	// ErrFileSaveFailed is returned when the written file cannot be read back.
	ErrFileSaveFailed = errors.New("File save failed.")
)

// Codec is an output image format.
type Codec struct {
	// Name is the codec's identifier. It doubles as the file extension.
	Name string

	// MIMEType is the media type of the encoded bytes.
	MIMEType string

	// Encoder builds an encoder for a native quality value (1-100).
	Encoder func(quality int) imgio.Encoder
}

// JPEG is the codec used for every request.
var JPEG = Codec{
	Name:     "JPEG",
	MIMEType: "image/jpeg",
	Encoder:  imgio.JPEGEncoder,
}

// QualityScale maps a [0,1] quality factor onto the codec's 1-100 scale.
// Values that are not finite select the maximum.
func QualityScale(quality float64) int {
	if math.IsNaN(quality) || math.IsInf(quality, 0) {
		return 100
	}
	q := int(math.Round(quality * 100))
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	default:
		return q
	}
}

// Encoder compresses the final pipeline buffer and delivers it to a sink.
type Encoder struct {
	// Codec defaults to JPEG.
	Codec Codec

	// Dir receives files written by WriteFile.
	Dir string

	// Now supplies the timestamp used for file names. Defaults to time.Now.
	Now func() time.Time
}

func (e *Encoder) codec() Codec {
	if e.Codec.Encoder == nil {
		return JPEG
	}
	return e.Codec
}

// Compress serializes buf at the given quality factor and releases buf.
func (e *Encoder) Compress(buf *PixelBuffer, quality float64) ([]byte, error) {
	img, err := buf.take("compress")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncoding, "compress", err)
	}
	defer buf.Release()

	codec := e.codec()
	var out bytes.Buffer
	if err := codec.Encoder(QualityScale(quality))(&out, img); err != nil {
		return nil, apperrors.Wrap(apperrors.KindEncoding, "compress",
			errors.Wrapf(err, "failed to encode %s", codec.Name))
	}
	if out.Len() == 0 {
		return nil, apperrors.Wrap(apperrors.KindEncoding, "compress", ErrEmptyEncoding)
	}
	return out.Bytes(), nil
}

// FileName returns the output name for t: <epoch-millis>.<codec name>.
func (e *Encoder) FileName(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + "." + e.codec().Name
}

// WriteFile stores data under Dir and returns its file:// URI.
//
// An existing file at the computed path is never overwritten. The file is
// read back before the URI is reported.
func (e *Encoder) WriteFile(data []byte) (string, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	dir, err := filepath.Abs(e.Dir)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindEncoding, "write file", err)
	}
	path := filepath.Join(dir, e.FileName(now()))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", apperrors.Wrap(apperrors.KindFileCollision, "write file",
				errors.Wrap(ErrFileExists, filepath.Base(path)))
		}
		return "", apperrors.Wrap(apperrors.KindEncoding, "write file", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", apperrors.Wrap(apperrors.KindEncoding, "write file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", apperrors.Wrap(apperrors.KindEncoding, "write file", err)
	}

	if err := readBack(path); err != nil {
		os.Remove(path)
		return "", apperrors.Wrap(apperrors.KindEncoding, "", ErrFileSaveFailed)
	}

	return FileURIScheme + path, nil
}

// readBack confirms a written file can be opened and read.
var readBack = verifyReadable

func verifyReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var first [1]byte
	if _, err := f.Read(first[:]); err != nil && err != io.EOF {
		return fmt.Errorf("failed to read back %s: %w", path, err)
	}
	return nil
}

// EncodeBase64 returns data as standard, padded base64 text.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
