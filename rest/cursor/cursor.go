// Package cursor implements opaque paging cursors for list endpoints.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"iter"
	"net/http"
	"strconv"
)

type Cursor struct {
	Start    uint
	PageSize uint
}

const (
	defaultPageSize uint = 20
	maxPageSize     uint = 1000
)

// DecodeFromRequest reads the cursor from the c query parameter. The
// page size may be overridden with p.
func DecodeFromRequest(r *http.Request) Cursor {
	cursor := DecodeFromString(r.URL.Query().Get("c"), defaultPageSize)
	if pageSizeStr := r.URL.Query().Get("p"); pageSizeStr != "" {
		if pageSize, err := strconv.ParseUint(pageSizeStr, 10, 0); err == nil && pageSize > 0 {
			cursor.PageSize = uint(pageSize)
		}
	}
	cursor.PageSize = min(cursor.PageSize, maxPageSize)
	return cursor
}

// DecodeFromString decodes an encoded cursor. Undecodable input yields
// the first page.
func DecodeFromString(encoded string, defaultPageSize uint) Cursor {
	cursor := Cursor{PageSize: defaultPageSize}
	if encoded == "" {
		return cursor
	}
	asJSON, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return cursor
	}
	if err := json.Unmarshal(asJSON, &cursor); err != nil {
		return Cursor{PageSize: defaultPageSize}
	}
	if cursor.PageSize == 0 {
		cursor.PageSize = defaultPageSize
	}
	return cursor
}

func (c Cursor) Encode() string {
	asJSON, err := json.Marshal(&c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(asJSON)
}

func (c Cursor) Previous() (Cursor, bool) {
	if c.Start > 0 {
		start := uint(0)
		if c.Start > c.PageSize {
			start = c.Start - c.PageSize
		}
		return Cursor{Start: start, PageSize: c.PageSize}, true
	}
	return Cursor{}, false
}

func (c Cursor) Next() (Cursor, bool) {
	return Cursor{Start: c.Start + c.PageSize, PageSize: c.PageSize}, true
}

// Slice collects the page of seq selected by c and reports whether seq
// continues after it.
func Slice[T any](seq iter.Seq[T], c Cursor) (page []T, hasMore bool) {
	var pos uint
	for v := range seq {
		switch {
		case pos < c.Start:
		case pos < c.Start+c.PageSize:
			page = append(page, v)
		default:
			return page, true
		}
		pos++
	}
	return page, false
}
