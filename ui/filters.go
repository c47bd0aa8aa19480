package ui

import (
	"math"
	"strconv"
	"strings"

	"github.com/sfi2k7/hubconsole/api"
	"github.com/sfi2k7/hubconsole/params"
)

const (
	PageKey     = "page"
	PageSizeKey = "page_size"
	SortKey     = "sort"
)

// DefaultIgnored are the keys never shown as filter chips.
var DefaultIgnored = []string{PageSizeKey, PageKey, SortKey, "id", "tab"}

// Chip is one applied filter value.
type Chip struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AppliedFilters lists one chip per stored value, skipping ignored keys.
// Chips follow key insertion order.
func AppliedFilters(p params.Params, ignored ...string) []Chip {
	skip := map[string]bool{}
	for _, k := range ignored {
		skip[k] = true
	}
	var out []Chip
	for _, k := range p.Keys() {
		if skip[k] {
			continue
		}
		v, _ := p.Get(k)
		for _, s := range v.Scalars() {
			out = append(out, Chip{Key: k, Value: s.String()})
		}
	}
	return out
}

// AddFilter appends value to key unless it is already applied. On a key
// already holding numbers, value is stored as a number too.
func AddFilter(p params.Params, key, value string) params.Params {
	if value == "" {
		return p
	}
	if _, ok := storedScalar(p, key, value); ok {
		return p
	}
	return firstPage(p.Append(key, scalarFor(p, key, value)))
}

// RemoveFilter drops one chip. The chip only carries text, so the stored
// scalar it was made from is the one deleted.
func RemoveFilter(p params.Params, c Chip) params.Params {
	s, ok := storedScalar(p, c.Key, c.Value)
	if !ok {
		return p
	}
	return firstPage(p.DeleteValue(c.Key, s))
}

func storedScalar(p params.Params, key, text string) (params.Scalar, bool) {
	v, ok := p.Get(key)
	if !ok {
		return params.Scalar{}, false
	}
	for _, s := range v.Scalars() {
		if s.String() == text {
			return s, true
		}
	}
	return params.Scalar{}, false
}

func scalarFor(p params.Params, key, text string) params.Scalar {
	if first, ok := p.First(key); ok && first.IsNumber() {
		if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return params.Number(f)
		}
	}
	return params.Text(text)
}

// ClearFilters keeps only the ignored keys.
func ClearFilters(p params.Params, ignored ...string) params.Params {
	out := p
	for _, c := range AppliedFilters(p, ignored...) {
		out = out.Delete(c.Key)
	}
	return firstPage(out)
}

// ToggleSort sorts by field, reversing the direction when p is already
// sorted by it.
func ToggleSort(p params.Params, field string) params.Params {
	next := field
	switch p.Text(SortKey) {
	case field:
		next = "-" + field
	case "-" + field:
		next = field
	}
	return firstPage(p.SetText(SortKey, next))
}

// SetPage moves to page n, clamped to 1.
func SetPage(p params.Params, n int) params.Params {
	if n < 1 {
		n = 1
	}
	return p.SetInt(PageKey, n)
}

func SetPageSize(p params.Params, n int) params.Params {
	if n < 1 {
		n = api.DefaultPageSize
	}
	return firstPage(p.SetInt(PageSizeKey, n))
}

// PageCount is the number of pages needed for count items, at least 1.
func PageCount(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = api.DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

func firstPage(p params.Params) params.Params {
	return p.SetInt(PageKey, api.DefaultPage)
}
