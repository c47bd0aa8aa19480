package api

import (
	"context"
	"sync/atomic"

	"github.com/sfi2k7/hubconsole/params"
)

// FetchFunc loads one page for a query.
type FetchFunc[T any] func(ctx context.Context, p params.Params) (*Page[T], error)

// Loader runs list queries for a view where a newer query supersedes older
// ones still in flight. Superseded requests are not cancelled; their
// results are reported stale and must be dropped by the caller.
type Loader[T any] struct {
	fetch FetchFunc[T]
	seq   atomic.Uint64
}

func NewLoader[T any](fetch FetchFunc[T]) *Loader[T] {
	return &Loader[T]{fetch: fetch}
}

// Load fetches p. fresh is false when another Load started after this one.
func (l *Loader[T]) Load(ctx context.Context, p params.Params) (page *Page[T], fresh bool, err error) {
	n := l.seq.Add(1)
	page, err = l.fetch(ctx, p)
	return page, l.seq.Load() == n, err
}
