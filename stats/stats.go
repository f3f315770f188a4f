// Package stats aggregates counts, date range, tag usage and GPS spread
// over a sequence of index items.
package stats

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/tidwall/btree"

	"github.com/RKrahl/photoidx/domain/gps"
	"github.com/RKrahl/photoidx/library"
)

const (
	dayLayout  = "2006-01-02"
	centerZoom = 8
)

type Stats struct {
	Count    int
	Selected int
	// Oldest and Newest are nil when no item has a date.
	Oldest *time.Time
	Newest *time.Time
	// ByDate is keyed by the capture day, YYYY-MM-DD.
	ByDate *btree.Map[string, int]
	ByTag  *btree.Map[string, int]
	// GPSCenter is nil when there are no positions or they cancel out.
	GPSCenter *gps.Position
	GPSRadius float64
}

// Collect walks items once.
func Collect(items iter.Seq[*library.Item]) *Stats {
	s := &Stats{
		ByDate: btree.NewMap[string, int](0),
		ByTag:  btree.NewMap[string, int](0),
	}
	var positions []gps.Position
	for item := range items {
		s.Count++
		if item.Selected {
			s.Selected++
		}
		if d := item.CreateDate; d != nil {
			if s.Oldest == nil || d.Before(*s.Oldest) {
				s.Oldest = d
			}
			if s.Newest == nil || d.After(*s.Newest) {
				s.Newest = d
			}
			increment(s.ByDate, d.Format(dayLayout))
		}
		if item.GPSPosition != nil {
			positions = append(positions, *item.GPSPosition)
		}
		for tag := range item.Tags {
			increment(s.ByTag, tag)
		}
	}
	if center, err := gps.Centroid(positions); err == nil {
		s.GPSCenter = &center
		for _, p := range positions {
			s.GPSRadius = max(s.GPSRadius, center.DistanceTo(p))
		}
	}
	return s
}

func increment(m *btree.Map[string, int], key string) {
	n, _ := m.Get(key)
	m.Set(key, n+1)
}

func formatTime(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format("2006-01-02 15:04:05.999999")
	}
	return t.Format("2006-01-02 15:04:05.999999-07:00")
}

// String renders the report printed by the stats command.
func (s *Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Count: %d\nSelected: %d\n", s.Count, s.Selected)
	if s.Oldest != nil {
		fmt.Fprintf(&b, "Oldest: %s\n", formatTime(*s.Oldest))
		fmt.Fprintf(&b, "Newest: %s\n", formatTime(*s.Newest))
	}
	if s.GPSCenter != nil {
		fmt.Fprintf(&b, "GPS center: %s\n", s.GPSCenter)
		fmt.Fprintf(&b, "            (%s)\n", s.GPSCenter.MapURL(centerZoom, 0))
		fmt.Fprintf(&b, "GPS radius: %.2f km\n", s.GPSRadius)
	}
	writeCounts(&b, "By date", s.ByDate)
	writeCounts(&b, "By tag", s.ByTag)
	return b.String()
}

func writeCounts(b *strings.Builder, title string, m *btree.Map[string, int]) {
	if m.Len() == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	m.Scan(func(key string, n int) bool {
		fmt.Fprintf(b, "  %s: %d\n", key, n)
		return true
	})
}

func toMap(m *btree.Map[string, int]) map[string]int {
	out := make(map[string]int, m.Len())
	m.Scan(func(key string, n int) bool {
		out[key] = n
		return true
	})
	return out
}

func (s *Stats) MarshalJSON() ([]byte, error) {
	out := struct {
		Count     int            `json:"count"`
		Selected  int            `json:"selected"`
		Oldest    *time.Time     `json:"oldest,omitempty"`
		Newest    *time.Time     `json:"newest,omitempty"`
		ByDate    map[string]int `json:"byDate"`
		ByTag     map[string]int `json:"byTag"`
		GPSCenter *gps.Position  `json:"gpsCenter,omitempty"`
		GPSRadius *float64       `json:"gpsRadius,omitempty"`
	}{
		Count:     s.Count,
		Selected:  s.Selected,
		Oldest:    s.Oldest,
		Newest:    s.Newest,
		ByDate:    toMap(s.ByDate),
		ByTag:     toMap(s.ByTag),
		GPSCenter: s.GPSCenter,
	}
	if s.GPSCenter != nil {
		out.GPSRadius = &s.GPSRadius
	}
	return json.Marshal(&out)
}
