package modifier

import (
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/image-modifier-mcp/internal/apperrors"
	"github.com/ironsheep/image-modifier-mcp/internal/imaging"
)

// Request field names. Every value arrives as text.
const (
	FieldPath         = "path"
	FieldGrayscale    = "grayscale"
	FieldResizeRatio  = "resizeRatio"
	FieldImageQuality = "imageQuality"
	FieldBase64       = "base64"
	FieldExtractEXIF  = "extractEXIF"
)

// Validation messages reported verbatim in Response.ErrorMsg.
const (
	MsgMissingPathKey = "URI Path KEY('path') must not be null."
	MsgEmptyPath      = "URI Path Value must not be null."
)

// DefaultQuality is used when imageQuality is absent or unusable.
const DefaultQuality = 1.0

// Request is a validated modify request.
type Request struct {
	Path      string
	Transform imaging.Transform

	// Quality is always in (0,1].
	Quality float64

	WantBase64   bool
	WantMetadata bool
}

// ParseRequest validates fields and converts them into a Request.
//
// Only the path is mandatory. Malformed optional values fall back to their
// defaults instead of failing: an unparseable resizeRatio disables resizing
// and an unusable imageQuality becomes DefaultQuality.
func ParseRequest(fields map[string]string) (*Request, error) {
	path, ok := fields[FieldPath]
	if !ok {
		return nil, apperrors.New(apperrors.KindValidation, "", MsgMissingPathKey)
	}
	if err := validatePath(path); err != nil {
		return nil, err
	}

	_, wantMetadata := fields[FieldExtractEXIF]

	return &Request{
		Path: path,
		Transform: imaging.Transform{
			ResizeRatio: parseRatio(fields[FieldResizeRatio]),
			Grayscale:   parseBool(fields[FieldGrayscale]),
		},
		Quality:      parseQuality(fields[FieldImageQuality]),
		WantBase64:   parseBool(fields[FieldBase64]),
		WantMetadata: wantMetadata,
	}, nil
}

func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.New(apperrors.KindValidation, "", MsgEmptyPath)
	}
	return nil
}

func parseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// parseRatio returns 0, which disables resizing, for unparseable input.
func parseRatio(v string) float64 {
	r, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(r) {
		return 0
	}
	return r
}

func parseQuality(v string) float64 {
	q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(q) || q <= 0 || q > 1 {
		return DefaultQuality
	}
	return q
}
