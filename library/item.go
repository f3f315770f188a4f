package library

import (
	"context"
	"maps"
	"path"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/domain"
	"github.com/RKrahl/photoidx/domain/gps"
	"github.com/RKrahl/photoidx/logging"
)

// ReservedPrefix marks tags used internally, they cannot be set by users.
const ReservedPrefix = "pidx:"

const selectedTag = ReservedPrefix + "selected"

// Item is the index entry of one photo.
type Item struct {
	// Filename is slash separated and relative to the index root.
	Filename    string
	Name        string
	Checksum    map[string]string
	CreateDate  *time.Time
	Orientation domain.Orientation
	GPSPosition *gps.Position
	Tags        TagSet
	Selected    bool
}

// NewItem creates the entry for the file at filename below root,
// computing checksums and reading its meta data.
func NewItem(ctx context.Context, root, filename string, opts ScanOptions) (*Item, error) {
	log := logging.From(ctx)
	full := fsPath(root, filename)
	sums, err := opts.checksums(ctx, full)
	if err != nil {
		return nil, err
	}
	item := &Item{
		Filename: filename,
		Checksum: sums,
		Tags:     NewTagSet(),
	}
	reader := opts.Metadata
	if reader == nil {
		reader = domain.ExifReader{}
	}
	meta, err := reader.ReadMetaData(ctx, full)
	if err != nil {
		return nil, err
	}
	item.CreateDate = meta.DateTaken
	item.Orientation = meta.Orientation
	item.GPSPosition = meta.Location
	log.Debug("Scanned item", zap.String("filename", filename), zap.Bool("dated", item.CreateDate != nil))
	return item, nil
}

// DisplayName is the name if set, the base name of the file otherwise.
func (i *Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return path.Base(i.Filename)
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	c.Checksum = maps.Clone(i.Checksum)
	c.Tags = maps.Clone(i.Tags)
	if i.CreateDate != nil {
		d := *i.CreateDate
		c.CreateDate = &d
	}
	if i.GPSPosition != nil {
		p := *i.GPSPosition
		c.GPSPosition = &p
	}
	return &c
}

// TagSet is a set of user tags.
type TagSet map[string]struct{}

func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

func (s TagSet) Add(tag string) error {
	if strings.HasPrefix(tag, ReservedPrefix) {
		return ErrReservedTag
	}
	s[tag] = struct{}{}
	return nil
}

func (s TagSet) Remove(tag string) {
	delete(s, tag)
}

func (s TagSet) Has(tag string) bool {
	_, found := s[tag]
	return found
}

func (s TagSet) Len() int {
	return len(s)
}

// Sorted returns the tags in byte order.
func (s TagSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// AddTag adds a user tag, reserved tags are rejected.
func (i *Item) AddTag(tag string) error {
	if i.Tags == nil {
		i.Tags = NewTagSet()
	}
	return i.Tags.Add(tag)
}

func (i *Item) RemoveTag(tag string) {
	i.Tags.Remove(tag)
}
