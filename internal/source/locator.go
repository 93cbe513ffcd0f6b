// Package source resolves image locators into readable byte streams.
//
// A locator is one of:
//   - a filesystem path, bare or with a file:// scheme
//   - a platform content handle (content://...), opened through a ContentOpener
//   - an inline data URI (data:<mime-type>[;params],<base64-payload>)
//
// Data URIs are decoded eagerly by Parse; only image/jpg, image/jpeg and
// image/png payloads are accepted.
package source

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/ironsheep/image-modifier-mcp/internal/apperrors"
)

// Kind is the active variant of a Locator.
type Kind int

const (
	KindFile Kind = iota
	KindContent
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindContent:
		return "content"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

const (
	schemeFile    = "file"
	schemeContent = "content"
	schemeData    = "data"
)

var (
	// ErrUnsupportedLocator is returned for schemes other than file, content and data.
	ErrUnsupportedLocator = errors.New("locator unsupported")

	// ErrMalformedDataURI is returned when a data URI has no comma separator
	// or an undecodable payload.
	ErrMalformedDataURI = errors.New("malformed data URI")

	// ErrUnsupportedMIMEType is returned when a data URI declares a type
	// outside the image whitelist.
	ErrUnsupportedMIMEType = errors.New("unsupported data URI MIME type")

	// ErrContentUnavailable is returned for content handles when no
	// ContentOpener was configured.
	ErrContentUnavailable = errors.New("content access unavailable")
)

var allowedMIMETypes = map[string]bool{
	"image/jpg":  true,
	"image/jpeg": true,
	"image/png":  true,
}

// Locator is a classified image locator. Exactly one of Path, Handle or
// Payload is meaningful, selected by Kind.
type Locator struct {
	Raw  string
	Kind Kind

	// Path is the filesystem path for KindFile.
	Path string

	// Handle is the full content URI for KindContent.
	Handle string

	// MIMEType and Payload hold the decoded inline image for KindData.
	MIMEType string
	Payload  []byte
}

// Parse classifies raw and, for data URIs, decodes the payload.
func Parse(raw string) (*Locator, error) {
	scheme, rest, hasScheme := splitScheme(raw)
	if !hasScheme {
		return &Locator{Raw: raw, Kind: KindFile, Path: raw}, nil
	}

	switch strings.ToLower(scheme) {
	case schemeFile:
		u, err := url.Parse(raw)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindSourceLoad, "parse file locator", err)
		}
		return &Locator{Raw: raw, Kind: KindFile, Path: u.Path}, nil
	case schemeContent:
		return &Locator{Raw: raw, Kind: KindContent, Handle: raw}, nil
	case schemeData:
		return parseDataURI(raw, rest)
	default:
		return nil, apperrors.Wrap(apperrors.KindSourceLoad, "parse locator",
			errors.Wrapf(ErrUnsupportedLocator, "scheme %q", scheme))
	}
}

// parseDataURI percent-decodes the scheme-specific part, then splits it at
// the first comma into the declared type and the base64 payload.
func parseDataURI(raw, rest string) (*Locator, error) {
	rest, err := url.PathUnescape(rest)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindSourceLoad, "parse data URI",
			errors.Wrap(ErrMalformedDataURI, err.Error()))
	}

	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, apperrors.Wrap(apperrors.KindSourceLoad, "parse data URI",
			errors.Wrap(ErrMalformedDataURI, "missing comma"))
	}

	declared := strings.ToLower(strings.ReplaceAll(rest[:comma], `\`, "/"))
	mimeType := declared
	if semi := strings.IndexByte(declared, ';'); semi >= 0 {
		mimeType = declared[:semi]
	}
	mimeType = strings.TrimSpace(mimeType)
	if !allowedMIMETypes[mimeType] {
		return nil, apperrors.Wrap(apperrors.KindSourceLoad, "parse data URI",
			errors.Wrapf(ErrUnsupportedMIMEType, "%q", mimeType))
	}

	payload, err := decodeBase64(rest[comma+1:])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindSourceLoad, "parse data URI",
			errors.Wrap(ErrMalformedDataURI, err.Error()))
	}

	return &Locator{Raw: raw, Kind: KindData, MIMEType: mimeType, Payload: payload}, nil
}

// decodeBase64 accepts standard base64 with or without padding and with
// embedded whitespace or line breaks.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(s, "=")
	return base64.RawStdEncoding.DecodeString(s)
}

// splitScheme splits an RFC 3986 scheme from the rest of raw. Strings whose
// prefix is not a valid scheme are reported as scheme-less paths.
func splitScheme(raw string) (scheme, rest string, ok bool) {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return "", raw, false
			}
		case c == ':':
			if i == 0 {
				return "", raw, false
			}
			return raw[:i], raw[i+1:], true
		default:
			return "", raw, false
		}
	}
	return "", raw, false
}

// ContentOpener opens platform content handles.
type ContentOpener interface {
	OpenContent(uri string) (io.ReadCloser, error)
}

// Resolver opens classified locators. The zero value handles file and data
// locators; content handles require Content.
type Resolver struct {
	Content ContentOpener
}

// Open returns a stream over the locator's bytes. The caller must close it.
func (r *Resolver) Open(loc *Locator) (io.ReadCloser, error) {
	switch loc.Kind {
	case KindFile:
		f, err := os.Open(loc.Path)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindSourceLoad, "open file", err)
		}
		return f, nil
	case KindContent:
		if r.Content == nil {
			return nil, apperrors.Wrap(apperrors.KindSourceLoad, "open content", ErrContentUnavailable)
		}
		rc, err := r.Content.OpenContent(loc.Handle)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindSourceLoad, "open content", err)
		}
		return rc, nil
	case KindData:
		return io.NopCloser(bytes.NewReader(loc.Payload)), nil
	default:
		return nil, apperrors.Wrap(apperrors.KindSourceLoad, "open", ErrUnsupportedLocator)
	}
}

// Load reads the locator's bytes completely.
func (r *Resolver) Load(loc *Locator) ([]byte, error) {
	if loc.Kind == KindData {
		return loc.Payload, nil
	}

	rc, err := r.Open(loc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindSourceLoad, "read "+loc.Kind.String(), err)
	}
	return data, nil
}
