package filter

import (
	"fmt"
	"path/filepath"

	"github.com/RKrahl/photoidx/domain/gps"
)

// Options are the filter settings as given on the command line or in a
// query. Unset options are no constraint.
type Options struct {
	// Tags is nil when not given. An empty string selects untagged items.
	Tags      *string
	Selected  *bool
	Date      string
	GPSPos    string
	GPSRadius float64
	Files     []string
}

// Criteria validates the options and converts them.
func (o Options) Criteria() (Criteria, error) {
	var c Criteria
	if o.Tags != nil {
		c.Tags = ParseTags(*o.Tags)
	}
	c.Selected = o.Selected
	if o.Date != "" {
		r, err := ParseDateRange(o.Date)
		if err != nil {
			return c, err
		}
		c.Date = &r
	}
	if o.GPSPos != "" {
		pos, err := gps.Parse(o.GPSPos)
		if err != nil {
			return c, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		radius := o.GPSRadius
		if radius == 0 {
			radius = DefaultRadius
		}
		if radius < 0 {
			return c, fmt.Errorf("%w: negative radius %g", ErrInvalidFormat, radius)
		}
		c.Near = &GeoProximity{Center: pos, RadiusKm: radius}
	}
	if len(o.Files) > 0 {
		c.Files = make(map[string]bool, len(o.Files))
		for _, f := range o.Files {
			c.Files[filepath.ToSlash(filepath.Clean(f))] = true
		}
	}
	return c, nil
}
