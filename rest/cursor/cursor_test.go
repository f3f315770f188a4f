package cursor_test

import (
	"net/http/httptest"
	"net/url"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RKrahl/photoidx/rest/cursor"
)

const (
	start0Page20     = "eyJTdGFydCI6MCwiUGFnZVNpemUiOjIwfQ=="
	start20Page20    = "eyJTdGFydCI6MjAsIlBhZ2VTaXplIjoyMH0="
	start3000Page100 = "eyJTdGFydCI6MzAwMCwiUGFnZVNpemUiOjEwMH0="
)

func TestEncodeCursor(t *testing.T) {
	data := []struct {
		Cursor   cursor.Cursor
		Expected string
	}{
		{
			Cursor:   cursor.Cursor{Start: 0, PageSize: 20},
			Expected: start0Page20,
		},
		{
			Cursor:   cursor.Cursor{Start: 20, PageSize: 20},
			Expected: start20Page20,
		},
		{
			Cursor:   cursor.Cursor{Start: 3000, PageSize: 100},
			Expected: start3000Page100,
		},
	}
	for i, d := range data {
		assert.Equal(t, d.Expected, d.Cursor.Encode(), "#%d: bad encoded cursor", i)
	}
}

func TestDecodeCursor(t *testing.T) {
	data := []struct {
		Encoded  string
		Expected cursor.Cursor
	}{
		{
			Encoded:  start0Page20,
			Expected: cursor.Cursor{Start: 0, PageSize: 20},
		},
		{
			Encoded:  start20Page20,
			Expected: cursor.Cursor{Start: 20, PageSize: 20},
		},
		{
			Encoded:  "",
			Expected: cursor.Cursor{Start: 0, PageSize: 33},
		},
		{
			Encoded:  "not base64!",
			Expected: cursor.Cursor{Start: 0, PageSize: 33},
		},
		{
			Encoded:  start3000Page100,
			Expected: cursor.Cursor{Start: 3000, PageSize: 100},
		},
	}
	for i, d := range data {
		actual := cursor.DecodeFromString(d.Encoded, 33)
		assert.Equal(t, d.Expected, actual, "%d: bad cursor value", i)
	}
}

func TestDecodeFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/items?c="+start20Page20+"&p=5", nil)
	assert.Equal(t, cursor.Cursor{Start: 20, PageSize: 5}, cursor.DecodeFromRequest(r))

	r = httptest.NewRequest("GET", "/items?p=0", nil)
	assert.Equal(t, cursor.Cursor{Start: 0, PageSize: 20}, cursor.DecodeFromRequest(r))
}

func TestPrevious(t *testing.T) {
	_, exists := cursor.Cursor{Start: 0, PageSize: 20}.Previous()
	assert.False(t, exists)

	prev, exists := cursor.Cursor{Start: 5, PageSize: 20}.Previous()
	assert.True(t, exists)
	assert.Equal(t, cursor.Cursor{Start: 0, PageSize: 20}, prev)
}

func TestSlice(t *testing.T) {
	seq := slices.Values([]int{0, 1, 2, 3, 4, 5, 6})
	var data = []struct {
		c        cursor.Cursor
		expected []int
		hasMore  bool
	}{
		{cursor.Cursor{Start: 0, PageSize: 3}, []int{0, 1, 2}, true},
		{cursor.Cursor{Start: 3, PageSize: 3}, []int{3, 4, 5}, true},
		{cursor.Cursor{Start: 6, PageSize: 3}, []int{6}, false},
		{cursor.Cursor{Start: 4, PageSize: 3}, []int{4, 5, 6}, false},
		{cursor.Cursor{Start: 9, PageSize: 3}, nil, false},
	}
	for _, d := range data {
		page, hasMore := cursor.Slice(seq, d.c)
		assert.Equal(t, d.expected, page, "%+v", d.c)
		assert.Equal(t, d.hasMore, hasMore, "%+v", d.c)
	}
}

func TestPageFor(t *testing.T) {
	href := func(c cursor.Cursor) string { return c.Encode() }
	page := cursor.PageFor(href, []int{1}, cursor.Cursor{Start: 20, PageSize: 20}, true)
	assert.Equal(t, []cursor.Link{
		{"previous", start0Page20},
		{"next", "eyJTdGFydCI6NDAsIlBhZ2VTaXplIjoyMH0="},
	}, page.Links)

	page = cursor.PageFor(href, []int{1}, cursor.Cursor{Start: 0, PageSize: 20}, false)
	assert.Empty(t, page.Links)
}

func TestLinkFor(t *testing.T) {
	u, err := url.Parse("/items?tags=Tokyo&p=5&c=xyz")
	require.NoError(t, err)
	link := cursor.LinkFor(u)(cursor.Cursor{Start: 20, PageSize: 20})
	assert.Equal(t, "/items?c="+url.QueryEscape(start20Page20)+"&tags=Tokyo", link)
}
