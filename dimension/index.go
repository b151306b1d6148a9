package dimension

import (
	"fmt"
	"iter"
)

// Pair is one row of a lookup relation.
type Pair struct {
	Key    string
	Offset int
}

// Index is an immutable bijection between keys and offsets in [0, Len()).
type Index struct {
	axis    string
	offsets map[string]int
	keys    []string // keys[offset]
}

// New builds an Index from pairs. The pairs may arrive in any order, but
// together they must cover every offset in [0, len(pairs)) exactly once with
// distinct keys.
func New(axis string, pairs []Pair) (*Index, error) {
	n := len(pairs)
	idx := &Index{
		axis:    axis,
		offsets: make(map[string]int, n),
		keys:    make([]string, n),
	}
	seen := make([]bool, n)

	for _, p := range pairs {
		if p.Offset < 0 || p.Offset >= n {
			return nil, &InvalidIndexError{Axis: axis, Reason: fmt.Sprintf("offset %d for key %q outside [0, %d)", p.Offset, p.Key, n)}
		}
		if seen[p.Offset] {
			return nil, &InvalidIndexError{Axis: axis, Reason: fmt.Sprintf("offset %d assigned to both %q and %q", p.Offset, idx.keys[p.Offset], p.Key)}
		}
		if prev, ok := idx.offsets[p.Key]; ok {
			return nil, &InvalidIndexError{Axis: axis, Reason: fmt.Sprintf("key %q assigned to offsets %d and %d", p.Key, prev, p.Offset)}
		}
		seen[p.Offset] = true
		idx.keys[p.Offset] = p.Key
		idx.offsets[p.Key] = p.Offset
	}

	// With n pairs, no duplicates and every offset in range, the offsets
	// are exactly {0..n-1}.
	return idx, nil
}

// Axis returns the name of the axis ("date", "practice", ...).
func (x *Index) Axis() string { return x.axis }

// Len returns the number of keys.
func (x *Index) Len() int { return len(x.keys) }

// Offset returns the offset of key, or an *UnknownKeyError.
func (x *Index) Offset(key string) (int, error) {
	off, ok := x.offsets[key]
	if !ok {
		return 0, &UnknownKeyError{Axis: x.axis, Key: key}
	}
	return off, nil
}

// Contains reports whether key is present.
func (x *Index) Contains(key string) bool {
	_, ok := x.offsets[key]
	return ok
}

// Key returns the key at offset. It is intended for diagnostics.
func (x *Index) Key(offset int) (string, error) {
	if offset < 0 || offset >= len(x.keys) {
		return "", &UnknownOffsetError{Axis: x.axis, Offset: offset, Len: len(x.keys)}
	}
	return x.keys[offset], nil
}

// Keys returns a copy of the keys in offset order.
func (x *Index) Keys() []string {
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

// All iterates over (key, offset) in offset order.
func (x *Index) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for off, key := range x.keys {
			if !yield(key, off) {
				return
			}
		}
	}
}

// Range returns the half-open offset range [lo, hi) spanning the keys from
// and to inclusive. It fails if either key is unknown or if from comes after
// to.
func (x *Index) Range(from, to string) (lo, hi int, err error) {
	lo, err = x.Offset(from)
	if err != nil {
		return 0, 0, err
	}
	last, err := x.Offset(to)
	if err != nil {
		return 0, 0, err
	}
	if last < lo {
		return 0, 0, fmt.Errorf("%s: range %q..%q is reversed", x.axis, from, to)
	}
	return lo, last + 1, nil
}
