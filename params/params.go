// Package params holds the query/filter state of list and search views.
//
// A Params maps parameter names to a scalar or a sequence of scalars. It is
// an immutable value: every operation that changes it returns a new Params
// and leaves the receiver untouched, so snapshots can be shared freely
// between goroutines and compared by the views that hold them.
package params

// Params is an immutable mapping from parameter name to value. The zero
// value is an empty store.
type Params struct {
	keys []string
	vals map[string]Value
}

// New returns an empty store.
func New() Params {
	return Params{}
}

func (p Params) Len() int {
	return len(p.keys)
}

// Keys returns the parameter names in insertion order.
func (p Params) Keys() []string {
	cp := make([]string, len(p.keys))
	copy(cp, p.keys)
	return cp
}

func (p Params) Get(key string) (Value, bool) {
	v, ok := p.vals[key]
	return v, ok
}

func (p Params) Has(key string) bool {
	_, ok := p.vals[key]
	return ok
}

// First returns the first scalar stored under key.
func (p Params) First(key string) (Scalar, bool) {
	v, ok := p.vals[key]
	if !ok {
		return Scalar{}, false
	}
	return v.First(), true
}

// Int returns the first scalar under key as an int, or def when the key is
// absent or not numeric.
func (p Params) Int(key string, def int) int {
	s, ok := p.First(key)
	if !ok || !s.IsNumber() {
		return def
	}
	return s.Int()
}

// Text returns the first scalar under key as text, or "" when absent.
func (p Params) Text(key string) string {
	s, _ := p.First(key)
	return s.String()
}

// Set replaces whatever is stored under key. A one-element sequence is
// stored as a scalar and an empty sequence removes the key.
func (p Params) Set(key string, v Value) Params {
	v, ok := v.canonical()
	if !ok {
		return p.Delete(key)
	}
	out := p.clone()
	out.put(key, v)
	return out
}

// SetText is Set with a single text scalar.
func (p Params) SetText(key, s string) Params {
	return p.Set(key, Single(Text(s)))
}

// SetInt is Set with a single numeric scalar.
func (p Params) SetInt(key string, n int) Params {
	return p.Set(key, Single(Int(n)))
}

// Append adds s under key. An absent key is set, a scalar is promoted to a
// two-element sequence and a sequence grows by one.
func (p Params) Append(key string, s Scalar) Params {
	out := p.clone()
	if cur, ok := out.vals[key]; ok {
		out.put(key, cur.with(s))
	} else {
		out.put(key, Single(s))
	}
	return out
}

// Reduce returns a store without the given keys. Absent keys are ignored.
func (p Params) Reduce(keys ...string) Params {
	out := p
	for _, k := range keys {
		out = out.Delete(k)
	}
	return out
}

// Delete removes key entirely.
func (p Params) Delete(key string) Params {
	if !p.Has(key) {
		return p.clone()
	}
	out := Params{
		keys: make([]string, 0, len(p.keys)-1),
		vals: make(map[string]Value, len(p.vals)-1),
	}
	for _, k := range p.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.vals[k] = p.vals[k]
	}
	return out
}

// DeleteValue removes the first occurrence of s from a sequence of two or
// more values. A sequence left with one element collapses to a scalar. When
// the stored value is a scalar, s is ignored and the key is removed.
func (p Params) DeleteValue(key string, s Scalar) Params {
	cur, ok := p.vals[key]
	if !ok {
		return p.clone()
	}
	if !cur.seq || len(cur.items) <= 1 {
		return p.Delete(key)
	}
	i := cur.index(s)
	if i < 0 {
		return p.clone()
	}
	next, _ := cur.without(i).canonical()
	out := p.clone()
	out.put(key, next)
	return out
}

// Exists reports whether s is stored under key.
func (p Params) Exists(key string, s Scalar) bool {
	v, ok := p.vals[key]
	if !ok {
		return false
	}
	return v.Contains(s)
}

// IsSet reports whether any of keys is present.
func (p Params) IsSet(keys ...string) bool {
	for _, k := range keys {
		if p.Has(k) {
			return true
		}
	}
	return false
}

// Equal compares keys and values, ignoring key order.
func (p Params) Equal(o Params) bool {
	if len(p.keys) != len(o.keys) {
		return false
	}
	for k, v := range p.vals {
		ov, ok := o.vals[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (p Params) clone() Params {
	out := Params{
		keys: make([]string, len(p.keys), len(p.keys)+1),
		vals: make(map[string]Value, len(p.vals)+1),
	}
	copy(out.keys, p.keys)
	for k, v := range p.vals {
		out.vals[k] = v
	}
	return out
}

// put writes into a store owned by the caller.
func (p *Params) put(key string, v Value) {
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = v
}
