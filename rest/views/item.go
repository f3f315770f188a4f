// Package views holds the JSON representations served by the REST API.
package views

import (
	"fmt"
	"net/url"
	"time"

	"github.com/RKrahl/photoidx/domain"
	"github.com/RKrahl/photoidx/domain/gps"
	"github.com/RKrahl/photoidx/library"
)

type Links map[string]string

func (l Links) Add(name, link string) Links {
	l[name] = link
	return l
}

type Item struct {
	Filename    string            `json:"filename"`
	Links       Links             `json:"links"`
	Name        string            `json:"name"`
	Checksum    map[string]string `json:"checksum,omitempty"`
	CreateDate  *time.Time        `json:"createDate,omitempty"`
	Orientation string            `json:"orientation,omitempty"`
	Location    *gps.Position     `json:"location,omitempty"`
	Tags        []string          `json:"tags"`
	Selected    bool              `json:"selected"`
}

type LinkProvider struct {
	patterns map[string]string
}

func (p LinkProvider) LinksFor(item *library.Item) Links {
	links := make(Links)
	escaped := (&url.URL{Path: item.Filename}).EscapedPath()
	for name, pattern := range p.patterns {
		links[name] = fmt.Sprintf(pattern, escaped)
	}
	return links
}

var itemLinks = LinkProvider{
	patterns: map[string]string{
		"self": "/items/%s",
	},
}

func ItemFrom(item *library.Item) Item {
	v := Item{
		Filename:   item.Filename,
		Links:      itemLinks.LinksFor(item),
		Name:       item.DisplayName(),
		Checksum:   item.Checksum,
		CreateDate: item.CreateDate,
		Location:   item.GPSPosition,
		Tags:       []string{},
		Selected:   item.Selected,
	}
	if item.Tags.Len() > 0 {
		v.Tags = item.Tags.Sorted()
	}
	if item.Orientation != domain.UnknownOrientation {
		v.Orientation = item.Orientation.String()
	}
	return v
}

// TagCount is the number of items carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
