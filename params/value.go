package params

import (
	"strconv"
	"strings"
)

// Kind tells a text scalar from a numeric one.
type Kind uint8

const (
	KindText Kind = iota
	KindNumber
)

// Scalar is a single text or numeric parameter value.
type Scalar struct {
	kind Kind
	text string
	num  float64
}

// Text returns a text scalar.
func Text(s string) Scalar {
	return Scalar{kind: KindText, text: s}
}

// Number returns a numeric scalar.
func Number(f float64) Scalar {
	return Scalar{kind: KindNumber, num: f}
}

// Int returns a numeric scalar holding n.
func Int(n int) Scalar {
	return Number(float64(n))
}

func (s Scalar) Kind() Kind {
	return s.kind
}

func (s Scalar) IsNumber() bool {
	return s.kind == KindNumber
}

// Float returns the numeric value, or 0 for text scalars.
func (s Scalar) Float() float64 {
	if s.kind != KindNumber {
		return 0
	}
	return s.num
}

// Int returns the numeric value truncated to an int, or 0 for text scalars.
func (s Scalar) Int() int {
	return int(s.Float())
}

// String returns the text form used on the wire.
func (s Scalar) String() string {
	if s.kind == KindNumber {
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	}
	return s.text
}

// Equal reports whether both scalars have the same kind and value.
func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	if s.kind == KindNumber {
		return s.num == o.num
	}
	return s.text == o.text
}

// Value is either a single scalar or an ordered sequence of scalars.
type Value struct {
	items []Scalar
	seq   bool
}

// Single wraps one scalar.
func Single(s Scalar) Value {
	return Value{items: []Scalar{s}}
}

// Seq builds a sequence value. The scalars are copied.
func Seq(items ...Scalar) Value {
	cp := make([]Scalar, len(items))
	copy(cp, items)
	return Value{items: cp, seq: true}
}

// Texts builds a sequence of text scalars.
func Texts(ss ...string) Value {
	items := make([]Scalar, 0, len(ss))
	for _, s := range ss {
		items = append(items, Text(s))
	}
	return Value{items: items, seq: true}
}

// Ints builds a sequence of numeric scalars.
func Ints(ns ...int) Value {
	items := make([]Scalar, 0, len(ns))
	for _, n := range ns {
		items = append(items, Int(n))
	}
	return Value{items: items, seq: true}
}

func (v Value) IsSeq() bool {
	return v.seq
}

func (v Value) Len() int {
	return len(v.items)
}

// Scalars returns a copy of the scalars held by v.
func (v Value) Scalars() []Scalar {
	cp := make([]Scalar, len(v.items))
	copy(cp, v.items)
	return cp
}

// First returns the first scalar, or the zero scalar when v is empty.
func (v Value) First() Scalar {
	if len(v.items) == 0 {
		return Scalar{}
	}
	return v.items[0]
}

// Contains reports whether s equals the scalar or is a member of the sequence.
func (v Value) Contains(s Scalar) bool {
	return v.index(s) >= 0
}

func (v Value) index(s Scalar) int {
	for i, item := range v.items {
		if item.Equal(s) {
			return i
		}
	}
	return -1
}

// Equal compares shape and scalars.
func (v Value) Equal(o Value) bool {
	if v.seq != o.seq || len(v.items) != len(o.items) {
		return false
	}
	for i := range v.items {
		if !v.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if !v.seq {
		return v.First().String()
	}
	parts := make([]string, len(v.items))
	for i, item := range v.items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// canonical folds a value to the stored shape: a scalar or a sequence of at
// least two scalars. ok is false when nothing is left to store.
func (v Value) canonical() (Value, bool) {
	switch len(v.items) {
	case 0:
		return Value{}, false
	case 1:
		return Value{items: []Scalar{v.items[0]}}, true
	}
	return Seq(v.items...), true
}

// with returns v with s appended, promoting a scalar to a sequence.
func (v Value) with(s Scalar) Value {
	items := make([]Scalar, 0, len(v.items)+1)
	items = append(items, v.items...)
	items = append(items, s)
	return Value{items: items, seq: true}
}

// without drops the element at i.
func (v Value) without(i int) Value {
	items := make([]Scalar, 0, len(v.items)-1)
	items = append(items, v.items[:i]...)
	items = append(items, v.items[i+1:]...)
	return Value{items: items, seq: true}
}
