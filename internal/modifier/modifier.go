// Package modifier runs one image modification request end to end.
//
// A call resolves the locator, decodes the image, applies the requested
// transforms, compresses the result and hands it to exactly one sink (a new
// file in the cache directory, or base64 text). When metadata is requested it
// is read from the original bytes, not from the pipeline output, and merged
// into the same Response.
//
// Every failure except resource exhaustion is reported inside the Response.
// Resource exhaustion is returned as an error so the caller can abort.
//
// A Modifier holds only read-only configuration and may be shared by
// concurrent callers.
package modifier

import (
	"io"
	"log"
	"time"

	"github.com/ironsheep/image-modifier-mcp/internal/apperrors"
	"github.com/ironsheep/image-modifier-mcp/internal/exif"
	"github.com/ironsheep/image-modifier-mcp/internal/imaging"
	"github.com/ironsheep/image-modifier-mcp/internal/source"
)

// Response is the result of a call, shaped like the wire mapping.
type Response struct {
	Success      bool   `json:"success"`
	ErrorMsg     string `json:"errorMsg,omitempty"`
	ImageURI     string `json:"imageURI,omitempty"`
	Base64String string `json:"base64String,omitempty"`
	EXIF         string `json:"exif,omitempty"`
}

func failure(err error) *Response {
	return &Response{Success: false, ErrorMsg: err.Error()}
}

// Options configures a Modifier.
type Options struct {
	// CacheDir receives files produced by the file sink. It must exist.
	CacheDir string

	// MaxPixels bounds the decoded frame size. Zero selects
	// imaging.DefaultMaxPixels.
	MaxPixels int

	// Content opens content:// handles. Without it such locators fail to load.
	Content source.ContentOpener

	// Now overrides the clock used for output file names.
	Now func() time.Time

	// Debug logs the cause of every failure response.
	Debug bool
}

// Modifier executes modify and metadata requests.
type Modifier struct {
	resolver  *source.Resolver
	encoder   *imaging.Encoder
	maxPixels int
	debug     bool
}

// New creates a Modifier from opts.
func New(opts Options) *Modifier {
	return &Modifier{
		resolver: &source.Resolver{Content: opts.Content},
		encoder: &imaging.Encoder{
			Codec: imaging.JPEG,
			Dir:   opts.CacheDir,
			Now:   opts.Now,
		},
		maxPixels: opts.MaxPixels,
		debug:     opts.Debug,
	}
}

// Modify validates fields and runs the pipeline.
//
// Exactly one Response is produced per call. When metadata was requested:
//   - on pipeline success a metadata failure keeps Success and the image
//     field, leaves EXIF empty and reports the failure in ErrorMsg
//   - on pipeline failure a successfully read document is still attached
//
// The returned error is non-nil only for fatal failures, in which case the
// Response is nil.
func (m *Modifier) Modify(fields map[string]string) (*Response, error) {
	req, err := ParseRequest(fields)
	if err != nil {
		m.debugf("Rejected request: %v", err)
		return failure(err), nil
	}

	loc, err := source.Parse(req.Path)
	var resp *Response
	if err == nil {
		resp, err = m.run(req, loc)
	}
	if err != nil {
		if apperrors.IsFatal(err) {
			log.Printf("Aborting %s: %v", req.Path, err)
			return nil, err
		}
		m.debugf("Modify %s failed (%s): %v", req.Path, apperrors.KindOf(err), err)
		resp = failure(err)
	}

	// An unparseable locator has no original bytes to read metadata from.
	if req.WantMetadata && loc != nil {
		m.attachMetadata(resp, loc)
	}
	return resp, nil
}

// run executes Resolve, Decode, Transform and Encode. Each stage releases
// the buffer it was given.
func (m *Modifier) run(req *Request, loc *source.Locator) (*Response, error) {
	data, err := m.resolver.Load(loc)
	if err != nil {
		return nil, err
	}

	decoded, err := imaging.Decode(data, m.maxPixels)
	if err != nil {
		return nil, err
	}

	final, err := imaging.Apply(decoded, req.Transform)
	if err != nil {
		return nil, err
	}

	compressed, err := m.encoder.Compress(final, req.Quality)
	if err != nil {
		return nil, err
	}

	if req.WantBase64 {
		return &Response{Success: true, Base64String: imaging.EncodeBase64(compressed)}, nil
	}

	uri, err := m.encoder.WriteFile(compressed)
	if err != nil {
		return nil, err
	}
	return &Response{Success: true, ImageURI: uri}, nil
}

func (m *Modifier) attachMetadata(resp *Response, loc *source.Locator) {
	doc, err := m.extract(loc)
	if err == nil {
		var out string
		if out, err = doc.JSON(); err == nil {
			resp.EXIF = out
			return
		}
	}

	m.debugf("Metadata for %s unavailable: %v", loc.Raw, err)
	if resp.Success {
		resp.ErrorMsg = err.Error()
	}
}

// Metadata extracts the metadata document of the image at path without
// running the pipeline.
func (m *Modifier) Metadata(path string) *Response {
	if err := validatePath(path); err != nil {
		return failure(err)
	}

	loc, err := source.Parse(path)
	if err != nil {
		return failure(apperrors.Wrap(apperrors.KindMetadataStream, "resolve metadata source", err))
	}

	doc, err := m.extract(loc)
	if err != nil {
		m.debugf("Metadata for %s unavailable: %v", path, err)
		return failure(err)
	}

	out, err := doc.JSON()
	if err != nil {
		return failure(err)
	}
	return &Response{Success: true, EXIF: out}
}

// extract re-opens the original source so metadata never depends on the
// pipeline's buffers.
func (m *Modifier) extract(loc *source.Locator) (exif.Document, error) {
	return exif.Extract(func() (io.ReadCloser, error) {
		return m.resolver.Open(loc)
	})
}

func (m *Modifier) debugf(format string, args ...interface{}) {
	if m.debug {
		log.Printf(format, args...)
	}
}
