package api

import (
	"context"
	"net/http"

	"github.com/sfi2k7/hubconsole/params"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Meta carries the total number of matching records.
type Meta struct {
	Count int `json:"count"`
}

// Links are the navigation links returned with a page.
type Links struct {
	First    string `json:"first"`
	Previous string `json:"previous"`
	Next     string `json:"next"`
	Last     string `json:"last"`
}

// Page is the paginated collection envelope returned by list endpoints.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Meta  Meta  `json:"meta"`
	Links Links `json:"links"`
}

// PageToOffset rewrites the page and page_size view parameters into the
// offset and limit the API understands.
func PageToOffset(p params.Params) params.Params {
	size := p.Int("page_size", DefaultPageSize)
	if size < 1 {
		size = DefaultPageSize
	}
	page := p.Int("page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}
	return p.Reduce("page", "page_size").
		SetInt("offset", size*(page-1)).
		SetInt("limit", size)
}

func list[T any](ctx context.Context, c *Client, path string, p params.Params) (*Page[T], error) {
	page := &Page[T]{}
	if err := c.do(ctx, http.MethodGet, path, PageToOffset(p), nil, page); err != nil {
		return nil, err
	}
	return page, nil
}
