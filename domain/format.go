package domain

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/RKrahl/photoidx/domain/gps"
)

const exifDateLayout = "2006:01:02 15:04:05"

type metaDataReader func(io.Reader, *MediaMetaData) error

// Format is a media file format known to the meta data extraction.
type Format interface {
	ID() string
	Mime() string
	DecodeMetaData(in io.Reader, meta *MediaMetaData) error
}

type formatImpl struct {
	id         string
	mime       string
	metaReader metaDataReader
}

type ErrUnsupportedFormat string

func (e ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported file format '%s'", string(e))
}

var (
	formatsByID = map[string]Format{}

	JPEG Format
	TIFF Format
)

func init() {
	JPEG = RegisterFormat("jpg", "image/jpeg", exifReader)
	TIFF = RegisterFormat("tif", "image/tiff", exifReader)
}

// RegisterFormat makes a format known under the given extension.
func RegisterFormat(extension string, mime string, metaReader metaDataReader) Format {
	format := formatImpl{
		id:         extension,
		mime:       mime,
		metaReader: metaReader,
	}
	formatsByID[extension] = format
	return format
}

// FormatForExt returns the format registered for the extension, with or
// without the leading dot.
func FormatForExt(ext string) (Format, bool) {
	f, found := formatsByID[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return f, found
}

// FormatOf returns the format of the content in the given reader. Calling
// this function will consume the beginning of the reader.
func FormatOf(r io.Reader) (Format, error) {
	header := make([]byte, 262)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	kind, err := filetype.Match(header[:n])
	if err != nil {
		return nil, err
	}
	if f, found := formatsByID[kind.Extension]; found {
		return f, nil
	}
	return nil, ErrUnsupportedFormat(kind.Extension)
}

func (f formatImpl) ID() string {
	return f.id
}

func (f formatImpl) Mime() string {
	return f.mime
}

// DecodeMetaData will decode meta data as per this format from the given
// reader and store it in the given metadata instance
func (f formatImpl) DecodeMetaData(in io.Reader, meta *MediaMetaData) error {
	if f.metaReader != nil {
		return f.metaReader(in, meta)
	}
	return nil
}

func exifReader(in io.Reader, meta *MediaMetaData) error {
	ex, err := exif.Decode(in)
	if err != nil && (ex == nil || exif.IsCriticalError(err)) {
		return err
	}
	meta.DateTaken = exifDate(ex)
	if tag, err := ex.Get(exif.Orientation); err == nil {
		if code, err := tag.Int(0); err == nil {
			meta.Orientation = OrientationFromCode(code)
		}
	}
	if lat, long, err := ex.LatLong(); err == nil {
		if pos, err := gps.New(lat, long); err == nil {
			meta.Location = &pos
		}
	}
	if model, ok := exifString(ex, exif.Model); ok {
		meta.CameraModel = model
	}
	if num, den, ok := exifRat(ex, exif.ExposureTime); ok {
		meta.ExposureTime = NewExposureTime(num, den)
	}
	if num, den, ok := exifRat(ex, exif.FNumber); ok && den != 0 {
		meta.Aperture = Aperture(float64(num) / float64(den))
	}
	if tag, err := ex.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			meta.ISO = iso
		}
	}
	if num, den, ok := exifRat(ex, exif.FocalLength); ok && den != 0 {
		meta.FocalLength = FocalLength(float64(num) / float64(den))
	}
	return nil
}

// exifDateFields lists the tags holding the capture time. The image
// DateTime is the one an index has always recorded.
var exifDateFields = []exif.FieldName{exif.DateTime, exif.DateTimeOriginal}

// exifDate returns the capture time as a naive timestamp, EXIF dates do
// not carry a time zone.
func exifDate(ex *exif.Exif) *time.Time {
	return firstExifDate(func(field exif.FieldName) (string, bool) {
		return exifString(ex, field)
	})
}

func firstExifDate(lookup func(exif.FieldName) (string, bool)) *time.Time {
	for _, field := range exifDateFields {
		s, ok := lookup(field)
		if !ok {
			continue
		}
		if t, err := time.ParseInLocation(exifDateLayout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

func exifString(ex *exif.Exif, field exif.FieldName) (string, bool) {
	tag, err := ex.Get(field)
	if err != nil || tag.Format() != tiff.StringVal {
		return "", false
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	return s, s != ""
}

func exifRat(ex *exif.Exif, field exif.FieldName) (int64, int64, bool) {
	tag, err := ex.Get(field)
	if err != nil {
		return 0, 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil {
		return 0, 0, false
	}
	return num, den, true
}
