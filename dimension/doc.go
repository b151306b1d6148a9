// Package dimension maps the natural keys of a matrix axis (calendar months,
// practice codes) to dense zero-based offsets.
//
// An Index is built once from a lookup relation of (key, offset) pairs and is
// immutable afterwards, so it can be shared across goroutines without
// locking. Construction verifies that the mapping is total: every offset in
// [0, N) appears exactly once and no key is repeated.
//
//	dates, err := dimension.Load(ctx, db, "date", "date", "date")
//	off, err := dates.Offset("2020-01-01")
//	if errors.Is(err, dimension.ErrUnknownKey) {
//	    // no data for this month
//	}
package dimension
