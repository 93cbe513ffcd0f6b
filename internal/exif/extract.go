package exif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/ironsheep/image-modifier-mcp/internal/apperrors"
)

// Document maps each section to the tags read from it. Values are string,
// int64 or float64 according to the tag's ValueKind.
type Document map[Section]map[string]interface{}

// NewDocument returns a document with every section present and empty.
func NewDocument() Document {
	doc := make(Document, len(sections))
	for _, s := range sections {
		doc[s] = make(map[string]interface{})
	}
	return doc
}

// JSON serializes the document as an object keyed by section name.
func (d Document) JSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindEncoding, "serialize metadata", err)
	}
	return string(b), nil
}

// Opener opens a fresh stream over the original image bytes.
type Opener func() (io.ReadCloser, error)

// Extract reads the original image through open and collects every
// registered tag.
//
// Only an unreadable stream is an error. A source without an EXIF block
// yields empty sections, and a tag that is missing or cannot be read as its
// declared kind is left out of its section.
func Extract(open Opener) (Document, error) {
	rc, err := open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMetadataStream, "open metadata stream", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMetadataStream, "read metadata stream", err)
	}
	return FromBytes(data), nil
}

// FromBytes collects every registered tag from data.
func FromBytes(data []byte) Document {
	doc := NewDocument()

	// A non-critical decode error still returns a usable x; a nil x means
	// there is no EXIF block or it is too damaged to walk.
	x, _ := goexif.Decode(bytes.NewReader(data))
	if x == nil {
		return doc
	}

	for _, s := range sections {
		for _, d := range registry(s) {
			if v, ok := readTag(x, d); ok {
				doc[s][d.Name] = v
			}
		}
	}
	return doc
}

// readTag performs the typed read for d. Any failure, including a panic
// inside the decoder, drops the tag.
func readTag(x *goexif.Exif, d TagDescriptor) (v interface{}, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = nil, false
		}
	}()

	t, err := x.Get(d.Field)
	if err != nil || t == nil || t.Count == 0 {
		return nil, false
	}

	switch d.Kind {
	case KindText:
		v, err = textValue(t)
	case KindInteger:
		v, err = intValue(t)
	case KindFloat:
		v, err = floatValue(t)
	default:
		err = fmt.Errorf("unknown value kind %d", d.Kind)
	}
	if err != nil {
		return nil, false
	}
	return v, true
}

var errNoValue = errors.New("tag has no usable value")

// asciiCharsetPrefix introduces EXIF "undefined" text such as
// GPSProcessingMethod.
const asciiCharsetPrefix = "ASCII\x00\x00\x00"

// textValue renders any tag as text: strings as-is, numbers and rationals
// comma-joined, undefined bytes as text when printable.
func textValue(t *tiff.Tag) (string, error) {
	switch t.Format() {
	case tiff.StringVal:
		s, err := t.StringVal()
		if err != nil {
			return "", err
		}
		s = strings.TrimRight(s, "\x00 ")
		if s == "" {
			return "", errNoValue
		}
		return s, nil

	case tiff.IntVal:
		parts := make([]string, 0, t.Count)
		for i := 0; i < int(t.Count); i++ {
			n, err := t.Int64(i)
			if err != nil {
				return "", err
			}
			parts = append(parts, strconv.FormatInt(n, 10))
		}
		return strings.Join(parts, ","), nil

	case tiff.RatVal:
		parts := make([]string, 0, t.Count)
		for i := 0; i < int(t.Count); i++ {
			num, den, err := t.Rat2(i)
			if err != nil {
				return "", err
			}
			parts = append(parts, strconv.FormatInt(num, 10)+"/"+strconv.FormatInt(den, 10))
		}
		return strings.Join(parts, ","), nil

	case tiff.FloatVal:
		parts := make([]string, 0, t.Count)
		for i := 0; i < int(t.Count); i++ {
			f, err := t.Float(i)
			if err != nil {
				return "", err
			}
			parts = append(parts, strconv.FormatFloat(f, 'f', -1, 64))
		}
		return strings.Join(parts, ","), nil

	case tiff.UndefVal:
		raw := bytes.TrimPrefix(t.Val, []byte(asciiCharsetPrefix))
		raw = bytes.TrimRight(raw, "\x00")
		if len(raw) == 0 {
			return "", errNoValue
		}
		if isPrintable(raw) {
			return string(raw), nil
		}
		parts := make([]string, len(raw))
		for i, b := range raw {
			parts[i] = strconv.Itoa(int(b))
		}
		return strings.Join(parts, ","), nil

	default:
		return "", errNoValue
	}
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// intValue reads the first component of an integer tag.
func intValue(t *tiff.Tag) (int64, error) {
	if t.Format() != tiff.IntVal {
		return 0, errors.Errorf("tag %#x is not an integer", t.Id)
	}
	return t.Int64(0)
}

// floatValue reads the first component of a rational, floating-point or
// integer tag. NaN and infinities are rejected; JSON cannot carry them.
func floatValue(t *tiff.Tag) (float64, error) {
	var (
		f   float64
		err error
	)
	switch t.Format() {
	case tiff.RatVal:
		var num, den int64
		num, den, err = t.Rat2(0)
		if err == nil && den == 0 {
			err = errors.Errorf("tag %#x has a zero denominator", t.Id)
		}
		f = float64(num) / float64(den)
	case tiff.FloatVal:
		f, err = t.Float(0)
	case tiff.IntVal:
		var n int64
		n, err = t.Int64(0)
		f = float64(n)
	default:
		err = errors.Errorf("tag %#x is not numeric", t.Id)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("tag %#x is not a finite number", t.Id)
	}
	return f, nil
}
