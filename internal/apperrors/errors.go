// Package apperrors classifies failures raised while modifying an image.
//
// Every error produced by the source, imaging, exif and modifier packages
// carries a Kind. The modifier uses the Kind to decide whether a failure
// becomes a structured failure response or aborts the whole call.
package apperrors

import (
	"github.com/pkg/errors"
)

// Kind identifies the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota

	// KindValidation covers missing or malformed request fields.
	KindValidation

	// KindSourceLoad covers unsupported or unreachable locators.
	KindSourceLoad

	// KindDecode covers bytes that are not a decodable image.
	KindDecode

	// KindTransform covers resize or colour stages that cannot produce output.
	KindTransform

	// KindResourceExhausted is fatal: the call is aborted instead of
	// producing a failure response.
	KindResourceExhausted

	// KindEncoding covers compression and serialization failures.
	KindEncoding

	// KindFileCollision is raised when the output path already exists.
	KindFileCollision

	// KindMetadataStream is raised when the original bytes cannot be read
	// for metadata extraction.
	KindMetadataStream
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindValidation:        "validation",
	KindSourceLoad:        "source_load",
	KindDecode:            "decode",
	KindTransform:         "transform",
	KindResourceExhausted: "resource_exhausted",
	KindEncoding:          "encoding",
	KindFileCollision:     "file_collision",
	KindMetadataStream:    "metadata_stream",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a classified failure. Op names the step that failed and may be
// empty, in which case Error() returns the wrapped message unchanged.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error from a message.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsFatal reports whether err must abort the call rather than be reported
// as a failure response.
func IsFatal(err error) bool {
	return Is(err, KindResourceExhausted)
}
