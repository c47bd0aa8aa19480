package hubconsole

import "sync"

// values carries what middlewares hand to the handler of one request.
// The map is allocated on first write; most requests never store anything.
type values struct {
	mu sync.RWMutex
	m  map[string]interface{}
}

func (v *values) set(k string, x interface{}) {
	v.mu.Lock()
	if v.m == nil {
		v.m = map[string]interface{}{}
	}
	v.m[k] = x
	v.mu.Unlock()
}

func (v *values) get(k string) (interface{}, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	x, ok := v.m[k]
	return x, ok
}

func (v *values) del(k string) {
	v.mu.Lock()
	delete(v.m, k)
	v.mu.Unlock()
}

// Value returns the request value stored under k when it has type T.
func Value[T any](c *Context, k string) (T, bool) {
	x, ok := c.values.get(k)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := x.(T)
	return t, ok
}
