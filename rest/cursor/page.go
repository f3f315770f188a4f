package cursor

import (
	"net/url"
)

type Link struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

type Page struct {
	Data  interface{} `json:"data"`
	Links []Link      `json:"links,omitempty"`
}

// PageFor wraps data with links to the neighbouring pages.
func PageFor(href func(Cursor) string, data interface{}, cursor Cursor, hasMore bool) (page Page) {
	page.Data = data
	if previous, exists := cursor.Previous(); exists {
		page.Links = append(page.Links, Link{"previous", href(previous)})
	}
	if next, exists := cursor.Next(); exists && hasMore {
		page.Links = append(page.Links, Link{"next", href(next)})
	}
	return
}

// LinkFor returns an href builder keeping all query parameters of u
// except the cursor ones.
func LinkFor(u *url.URL) func(Cursor) string {
	return func(c Cursor) string {
		q := u.Query()
		q.Del("p")
		q.Set("c", c.Encode())
		return u.Path + "?" + q.Encode()
	}
}

func Unpaged(data interface{}) (page Page) {
	return Page{Data: data}
}
