package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RKrahl/photoidx/domain"
	"github.com/RKrahl/photoidx/domain/gps"
)

// record is the on-disk form of an Item. Field order is the key order
// in the index file.
type record struct {
	Checksum    map[string]string `yaml:"checksum"`
	CreateDate  *timestamp        `yaml:"createDate"`
	Filename    string            `yaml:"filename"`
	GPSPosition *geoRefs          `yaml:"gpsPosition"`
	Name        string            `yaml:"name,omitempty"`
	Orientation *string           `yaml:"orientation"`
	Tags        []string          `yaml:"tags"`

	// Legacy keys, only ever read.
	MD5              string     `yaml:"md5,omitempty"`
	LegacyCreateDate *timestamp `yaml:"createdate,omitempty"`
}

type geoRefs struct {
	E *float64 `yaml:"E,omitempty"`
	N *float64 `yaml:"N,omitempty"`
	S *float64 `yaml:"S,omitempty"`
	W *float64 `yaml:"W,omitempty"`
}

func (g *geoRefs) refMap() map[string]float64 {
	m := map[string]float64{}
	for ref, v := range map[string]*float64{"E": g.E, "N": g.N, "S": g.S, "W": g.W} {
		if v != nil {
			m[ref] = *v
		}
	}
	return m
}

// MarshalYAML writes the references as plain keys. The default
// encoding quotes N, a boolean in YAML 1.1.
func (g geoRefs) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	refs := []struct {
		name  string
		value *float64
	}{{"E", g.E}, {"N", g.N}, {"S", g.S}, {"W", g.W}}
	for _, ref := range refs {
		if ref.value == nil {
			continue
		}
		var value yaml.Node
		if err := value.Encode(*ref.value); err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ref.name}
		node.Content = append(node.Content, key, &value)
	}
	return node, nil
}

func newGeoRefs(p gps.Position) *geoRefs {
	var g geoRefs
	for ref, v := range p.RefMap() {
		v := v
		switch ref {
		case "E":
			g.E = &v
		case "N":
			g.N = &v
		case "S":
			g.S = &v
		case "W":
			g.W = &v
		}
	}
	return &g
}

const (
	naiveLayout = "2006-01-02 15:04:05.999999999"
	zonedLayout = time.RFC3339Nano
)

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999 Z07:00",
	}
	naiveLayouts = []string{
		naiveLayout,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02",
	}
)

// timestamp keeps apart naive times, held in time.UTC, and times with
// an explicit zone, held in a fixed zone.
type timestamp time.Time

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			_, offset := t.Zone()
			return t.In(time.FixedZone("", offset)), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp '%s'", s)
}

func formatTimestamp(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format(naiveLayout)
	}
	return t.Format(zonedLayout)
}

func (t timestamp) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!timestamp",
		Value: formatTimestamp(time.Time(t)),
	}, nil
}

func (t *timestamp) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := parseTimestamp(node.Value)
	if err != nil {
		return err
	}
	*t = timestamp(parsed)
	return nil
}

func toRecord(item *Item) record {
	r := record{
		Checksum: item.Checksum,
		Filename: item.Filename,
		Name:     item.Name,
		Tags:     item.Tags.Sorted(),
	}
	if r.Checksum == nil {
		r.Checksum = map[string]string{}
	}
	if item.Selected {
		r.Tags = append(r.Tags, selectedTag)
		slices.Sort(r.Tags)
	}
	if item.CreateDate != nil {
		ts := timestamp(*item.CreateDate)
		r.CreateDate = &ts
	}
	if item.GPSPosition != nil {
		r.GPSPosition = newGeoRefs(*item.GPSPosition)
	}
	if item.Orientation.Known() {
		label := item.Orientation.String()
		r.Orientation = &label
	}
	return r
}

func fromRecord(r record) (*Item, error) {
	if r.Filename == "" {
		return nil, fmt.Errorf("%w: missing filename", ErrInvalidRecord)
	}
	item := &Item{
		Filename: r.Filename,
		Name:     r.Name,
		Checksum: r.Checksum,
		Tags:     NewTagSet(),
	}
	if item.Checksum == nil {
		item.Checksum = map[string]string{}
	}
	if r.CreateDate != nil {
		t := time.Time(*r.CreateDate)
		item.CreateDate = &t
	}
	if r.Orientation != nil {
		o, err := domain.ParseOrientation(*r.Orientation)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, r.Filename, err)
		}
		item.Orientation = o
	}
	if r.GPSPosition != nil {
		p, err := gps.FromRefMap(r.GPSPosition.refMap())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, r.Filename, err)
		}
		item.GPSPosition = &p
	}
	for _, tag := range r.Tags {
		if tag == selectedTag {
			item.Selected = true
			continue
		}
		if err := item.Tags.Add(tag); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, r.Filename, err)
		}
	}
	return item, nil
}

func encodeItems(items []*Item) ([]byte, error) {
	records := make([]record, len(items))
	for i, item := range items {
		records[i] = toRecord(item)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeItems(ctx context.Context, in io.Reader) ([]*Item, error) {
	var records []record
	if err := yaml.NewDecoder(in).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return []*Item{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	items := make([]*Item, 0, len(records))
	for _, r := range records {
		legacyMigrations.apply(ctx, &r)
		item, err := fromRecord(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
