// Package formats gives raw access to format specific meta data.
package formats

import (
	"os"
	"sort"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Field is a single raw EXIF field.
type Field struct {
	Name  string
	Value string
}

type fieldCollector struct {
	fields []Field
}

func (c *fieldCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.fields = append(c.fields, Field{Name: string(name), Value: tag.String()})
	return nil
}

// ExifFields returns all EXIF fields of the file at path, sorted by name.
func ExifFields(path string) ([]Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	meta, err := exif.Decode(f)
	if err != nil && (meta == nil || exif.IsCriticalError(err)) {
		return nil, err
	}
	var c fieldCollector
	if err := meta.Walk(&c); err != nil {
		return nil, err
	}
	sort.Slice(c.fields, func(i, j int) bool { return c.fields[i].Name < c.fields[j].Name })
	return c.fields, nil
}
