// Package filter selects index items by file name, tags, selection, date
// and GPS position.
package filter

import (
	"errors"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/RKrahl/photoidx/domain/gps"
	"github.com/RKrahl/photoidx/library"
)

var ErrInvalidFormat = errors.New("invalid filter")

// DefaultRadius around a GPS position in km.
const DefaultRadius = 3.0

// TagSpec requires and excludes tags. A spec with neither matches only
// untagged items.
type TagSpec struct {
	Required []string
	Excluded []string
}

// ParseTags reads a comma separated list of tags, a leading "!" excludes
// the tag. The empty string yields the spec matching untagged items.
func ParseTags(s string) *TagSpec {
	spec := &TagSpec{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		switch {
		case t == "" || t == "!":
		case strings.HasPrefix(t, "!"):
			spec.Excluded = append(spec.Excluded, t[1:])
		default:
			spec.Required = append(spec.Required, t)
		}
	}
	return spec
}

func (s *TagSpec) Match(tags library.TagSet) bool {
	if len(s.Required) == 0 && len(s.Excluded) == 0 {
		return tags.Len() == 0
	}
	for _, t := range s.Required {
		if !tags.Has(t) {
			return false
		}
	}
	return !slices.ContainsFunc(s.Excluded, tags.Has)
}

// DateRange is the half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// GeoProximity matches positions within RadiusKm of Center.
type GeoProximity struct {
	Center   gps.Position
	RadiusKm float64
}

func (g GeoProximity) Contains(p gps.Position) bool {
	return g.Center.DistanceTo(p) <= g.RadiusKm
}

// Criteria are ANDed, a nil or empty field is no constraint.
type Criteria struct {
	Files    map[string]bool
	Tags     *TagSpec
	Selected *bool
	Date     *DateRange
	Near     *GeoProximity
}

// Match reports whether item satisfies all criteria. Items without a
// date or position never match a date or position criterion.
func (c Criteria) Match(item *library.Item) bool {
	if len(c.Files) > 0 && !c.Files[item.Filename] {
		return false
	}
	if c.Tags != nil && !c.Tags.Match(item.Tags) {
		return false
	}
	if c.Selected != nil && item.Selected != *c.Selected {
		return false
	}
	if c.Date != nil && (item.CreateDate == nil || !c.Date.Contains(*item.CreateDate)) {
		return false
	}
	if c.Near != nil && (item.GPSPosition == nil || !c.Near.Contains(*item.GPSPosition)) {
		return false
	}
	return true
}

// Apply lazily yields the matching items of seq.
func (c Criteria) Apply(items iter.Seq[*library.Item]) iter.Seq[*library.Item] {
	return func(yield func(*library.Item) bool) {
		for item := range items {
			if c.Match(item) && !yield(item) {
				return
			}
		}
	}
}
