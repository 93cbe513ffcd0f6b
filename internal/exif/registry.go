package exif

import (
	goexif "github.com/rwcarlsen/goexif/exif"
)

// Section names one of the three tag groups of a Document.
type Section string

const (
	// SectionCapture holds camera and exposure data.
	SectionCapture Section = "EXIF"

	// SectionPositioning holds geolocation data.
	SectionPositioning Section = "GPS"

	// SectionScanner holds device and software data.
	SectionScanner Section = "TIFF"
)

var sections = [...]Section{SectionCapture, SectionPositioning, SectionScanner}

// Sections lists every section of a Document.
func Sections() []Section {
	return append([]Section(nil), sections[:]...)
}

// ValueKind is the declared type of a tag's value.
type ValueKind int

const (
	KindText ValueKind = iota
	KindInteger
	KindFloat
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// TagDescriptor declares one extracted tag.
type TagDescriptor struct {
	// Name is the key written to the Document.
	Name string

	// Field is the decoder's name for the tag. It differs from Name only
	// where the decoder spells the tag differently.
	Field goexif.FieldName

	Kind ValueKind
}

func tag(name string, kind ValueKind) TagDescriptor {
	return TagDescriptor{Name: name, Field: goexif.FieldName(name), Kind: kind}
}

// captureTags are read into the EXIF section.
var captureTags = []TagDescriptor{
	tag("DateTimeDigitized", KindText),
	tag("DateTimeOriginal", KindText),
	tag("ExifVersion", KindText),
	tag("FlashpixVersion", KindText),
	tag("ComponentsConfiguration", KindText),
	tag("SceneType", KindText),
	tag("SubjectArea", KindText),
	tag("SubSecTimeDigitized", KindText),
	tag("SubSecTimeOriginal", KindText),

	tag("ColorSpace", KindInteger),
	tag("ExposureMode", KindInteger),
	tag("ExposureProgram", KindInteger),
	tag("Flash", KindInteger),
	tag("FocalLengthIn35mmFilm", KindInteger),
	tag("ISOSpeedRatings", KindInteger),
	tag("MeteringMode", KindInteger),
	tag("PixelXDimension", KindInteger),
	tag("PixelYDimension", KindInteger),
	tag("SceneCaptureType", KindInteger),
	tag("SensingMethod", KindInteger),
	tag("WhiteBalance", KindInteger),

	tag("ApertureValue", KindFloat),
	tag("BrightnessValue", KindFloat),
	tag("ExposureBiasValue", KindFloat),
	tag("ExposureTime", KindFloat),
	tag("FNumber", KindFloat),
	tag("FocalLength", KindFloat),
	tag("ShutterSpeedValue", KindFloat),
}

// positioningTags are read into the GPS section.
var positioningTags = []TagDescriptor{
	tag("GPSAreaInformation", KindText),
	tag("GPSDateStamp", KindText),
	tag("GPSDestBearingRef", KindText),
	tag("GPSDestDistanceRef", KindText),
	tag("GPSDestLatitudeRef", KindText),
	tag("GPSDestLongitudeRef", KindText),
	tag("GPSImgDirectionRef", KindText),
	tag("GPSLatitudeRef", KindText),
	tag("GPSLongitudeRef", KindText),
	tag("GPSMapDatum", KindText),
	tag("GPSMeasureMode", KindText),
	tag("GPSProcessingMethod", KindText),
	{Name: "GPSSatellites", Field: goexif.FieldName("GPSSatelites"), Kind: KindText},
	tag("GPSSpeedRef", KindText),
	tag("GPSStatus", KindText),
	tag("GPSTimeStamp", KindText),
	tag("GPSTrackRef", KindText),
	tag("GPSVersionID", KindText),
	tag("GPSDestLatitude", KindText),
	tag("GPSDestLongitude", KindText),
	tag("GPSLatitude", KindText),
	tag("GPSLongitude", KindText),

	tag("GPSAltitudeRef", KindInteger),
	tag("GPSDifferential", KindInteger),

	tag("GPSDestBearing", KindFloat),
	tag("GPSDestDistance", KindFloat),
	tag("GPSDOP", KindFloat),
	tag("GPSImgDirection", KindFloat),
	tag("GPSSpeed", KindFloat),
	tag("GPSTrack", KindFloat),
	tag("GPSAltitude", KindFloat),
}

// scannerTags are read into the TIFF section.
var scannerTags = []TagDescriptor{
	tag("DateTime", KindText),
	tag("Make", KindText),
	tag("Model", KindText),
	tag("Software", KindText),

	tag("ResolutionUnit", KindInteger),

	tag("XResolution", KindFloat),
	tag("YResolution", KindFloat),
}

func registry(s Section) []TagDescriptor {
	switch s {
	case SectionCapture:
		return captureTags
	case SectionPositioning:
		return positioningTags
	case SectionScanner:
		return scannerTags
	default:
		return nil
	}
}

// Registry returns a copy of the tags extracted into s.
func Registry(s Section) []TagDescriptor {
	return append([]TagDescriptor(nil), registry(s)...)
}
