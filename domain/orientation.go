package domain

import (
	"errors"
	"fmt"
)

// Orientation of the camera relative to the scene, using the EXIF
// orientation codes 1 to 8. The zero value means unknown.
type Orientation uint8

const (
	UnknownOrientation Orientation = iota
	NormalOrientation
	MirrorHorizontal
	Rotate180
	MirrorVertical
	MirrorHorizontalRotate270
	Rotate90
	MirrorHorizontalRotate90
	Rotate270
)

var ErrInvalidOrientation = errors.New("invalid orientation")

var orientationLabels = [...]string{
	NormalOrientation:         "Horizontal (normal)",
	MirrorHorizontal:          "Mirror horizontal",
	Rotate180:                 "Rotate 180",
	MirrorVertical:            "Mirror vertical",
	MirrorHorizontalRotate270: "Mirror horizontal and rotate 270 CW",
	Rotate90:                  "Rotate 90 CW",
	MirrorHorizontalRotate90:  "Mirror horizontal and rotate 90 CW",
	Rotate270:                 "Rotate 270 CW",
}

// OrientationFromCode maps an EXIF orientation code, codes outside 1..8
// yield UnknownOrientation.
func OrientationFromCode(code int) Orientation {
	if code < int(NormalOrientation) || code > int(Rotate270) {
		return UnknownOrientation
	}
	return Orientation(code)
}

// ParseOrientation returns the orientation with the given label.
func ParseOrientation(label string) (Orientation, error) {
	for o, l := range orientationLabels {
		if l != "" && l == label {
			return Orientation(o), nil
		}
	}
	return UnknownOrientation, fmt.Errorf("%w '%s'", ErrInvalidOrientation, label)
}

func (o Orientation) Known() bool {
	return o >= NormalOrientation && o <= Rotate270
}

func (o Orientation) String() string {
	if !o.Known() {
		return ""
	}
	return orientationLabels[o]
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*o = UnknownOrientation
		return nil
	}
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
