package domain

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/RKrahl/photoidx/domain/gps"
	"github.com/RKrahl/photoidx/logging"
	"go.uber.org/zap"
)

// MediaMetaData is the meta data extracted from a media file. Only
// DateTaken, Orientation and Location end up in the index, the camera
// fields are informational.
type MediaMetaData struct {
	DateTaken   *time.Time
	Orientation Orientation
	Location    *gps.Position

	CameraModel  string
	ExposureTime *ExposureTime
	Aperture     Aperture
	ISO          int
	FocalLength  FocalLength
}

// MetadataReader extracts meta data from the file at path. Files
// without meta data yield an empty MediaMetaData, only errors accessing
// the file are returned.
type MetadataReader interface {
	ReadMetaData(ctx context.Context, path string) (MediaMetaData, error)
}

// MetadataReaderFunc adapts a function to a MetadataReader.
type MetadataReaderFunc func(ctx context.Context, path string) (MediaMetaData, error)

func (f MetadataReaderFunc) ReadMetaData(ctx context.Context, path string) (MediaMetaData, error) {
	return f(ctx, path)
}

// ExifReader reads meta data from the EXIF block of supported formats.
type ExifReader struct{}

func (ExifReader) ReadMetaData(ctx context.Context, path string) (meta MediaMetaData, err error) {
	f, err := os.Open(path)
	if err != nil {
		return meta, err
	}
	defer f.Close()
	log := logging.From(ctx).With(zap.String("path", path))
	format, err := FormatOf(f)
	if err != nil {
		log.Debug("Skipping meta data", zap.Error(err))
		return meta, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return meta, err
	}
	if err := format.DecodeMetaData(f, &meta); err != nil {
		log.Debug("No usable meta data", zap.String("format", format.ID()), zap.Error(err))
	}
	return meta, nil
}

// ExposureTime in seconds as a fraction.
type ExposureTime big.Rat

func NewExposureTime(num, den int64) *ExposureTime {
	if den == 0 {
		return nil
	}
	return (*ExposureTime)(big.NewRat(num, den))
}

func (e *ExposureTime) String() string {
	r := (*big.Rat)(e)
	if r.IsInt() {
		return fmt.Sprintf("%s sec", r.Num())
	}
	return fmt.Sprintf("%s/%s sec", r.Num(), r.Denom())
}

// Aperture is the f-number of the lens.
type Aperture float64

func (a Aperture) String() string {
	if a == Aperture(int(a)) {
		return fmt.Sprintf("f/%d", int(a))
	}
	return fmt.Sprintf("f/%.1f", float64(a))
}

// FocalLength of the lens in mm.
type FocalLength float64

func (l FocalLength) String() string {
	if l == FocalLength(int(l)) {
		return fmt.Sprintf("%d mm", int(l))
	}
	return fmt.Sprintf("%.1f mm", float64(l))
}
