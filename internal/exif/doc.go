// Package exif extracts a fixed set of EXIF tags from original image bytes.
//
// Tags are grouped into three sections, keyed the same way in the JSON
// output:
//   - EXIF: capture data (exposure, lens, timestamps)
//   - GPS: positioning data
//   - TIFF: device and software data
//
// Each section has a static registry of TagDescriptor values declaring the
// tag name and whether it is read as text, integer or floating point. The
// registries never change after package initialization.
//
// Extraction is fault tolerant per tag: a tag that is absent or whose value
// does not fit its declared kind is omitted from its section and never
// affects its siblings. A source with no EXIF block at all (PNG, or a JPEG
// stripped of metadata) produces three empty sections.
package exif
