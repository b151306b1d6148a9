package matrixstore

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"
)

// Rows is a lazy, forward-only sequence of decoded rows.
//
// Rows is not safe for concurrent use. It must be closed, either explicitly
// or by draining it with Next or All; Close is idempotent.
type Rows struct {
	store *Store
	ctx   context.Context
	query string
	start time.Time

	rows  *sql.Rows
	names []string
	kinds Columns // nil selects decoding by runtime type

	scan []any
	dest []any

	row    Row
	n      int
	err    error
	closed bool
}

func newRows(ctx context.Context, s *Store, query string, rows *sql.Rows, names []string, kinds Columns, start time.Time) *Rows {
	r := &Rows{
		store: s,
		ctx:   ctx,
		query: query,
		start: start,
		rows:  rows,
		names: names,
		kinds: kinds,
		scan:  make([]any, len(names)),
		dest:  make([]any, len(names)),
	}
	for i := range r.scan {
		r.dest[i] = &r.scan[i]
	}
	return r
}

// Columns returns the result column names.
func (r *Rows) Columns() []string {
	return append([]string(nil), r.names...)
}

// Next advances to the next row. It returns false at the end of the
// sequence or on error; the cursor is released in both cases.
func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	if r.store.closed.Load() {
		r.fail(ErrClosed)
		r.Close()
		return false
	}
	if !r.rows.Next() {
		if r.store.closed.Load() {
			r.fail(ErrClosed)
		} else if err := r.rows.Err(); err != nil {
			r.fail(fmt.Errorf("matrixstore: fetch row: %w", err))
		}
		r.Close()
		return false
	}
	if err := r.rows.Scan(r.dest...); err != nil {
		r.fail(fmt.Errorf("matrixstore: scan row %d: %w", r.n, err))
		r.Close()
		return false
	}

	row := make(Row, len(r.scan))
	for i, raw := range r.scan {
		v, err := r.convert(i, raw)
		if err != nil {
			r.fail(err)
			r.Close()
			return false
		}
		row[i] = v
	}
	r.row = row
	r.n++
	return true
}

// Row returns the current row. The returned slice and the vectors in it
// belong to the caller.
func (r *Rows) Row() Row {
	return r.row
}

// Err returns the error that ended the sequence, if any.
func (r *Rows) Err() error {
	return r.err
}

// Close releases the cursor and the query slot. It is idempotent.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.row = nil

	err := r.rows.Close()
	r.store.untrack(r)
	r.store.rc.ReleaseQuery()

	elapsed := time.Since(r.start)
	r.store.metrics.RecordQuery(r.n, elapsed, r.err)
	r.store.logger.LogQuery(r.ctx, r.query, r.n, elapsed, r.err)

	if err != nil {
		return fmt.Errorf("matrixstore: close rows: %w", err)
	}
	return nil
}

// All returns an iterator over the remaining rows. A failure is yielded
// once as the final element. The sequence is closed when iteration stops.
func (r *Rows) All() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		defer r.Close()
		for r.Next() {
			if !yield(r.row, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

func (r *Rows) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Rows) convert(i int, raw any) (Value, error) {
	if raw == nil {
		return Null(), nil
	}

	if r.kinds == nil {
		if b, ok := raw.([]byte); ok {
			return r.decode(i, b)
		}
		return Scalar(raw), nil
	}

	switch r.kinds[i] {
	case KindVector:
		b, ok := raw.([]byte)
		if !ok {
			return Value{}, &ColumnTypeError{Row: r.n, Column: i, Name: r.names[i], Declared: KindVector, Got: fmt.Sprintf("%T", raw)}
		}
		return r.decode(i, b)
	default:
		return Scalar(raw), nil
	}
}

func (r *Rows) decode(i int, b []byte) (Value, error) {
	vec, err := r.store.codec.Decode(b)
	r.store.metrics.RecordDecode(len(b), err)
	if err != nil {
		r.store.logger.LogDecodeFailure(r.ctx, r.names[i], len(b), err)
		return Value{}, &DecodeError{Row: r.n, Column: i, Name: r.names[i], cause: err}
	}
	return Vector(vec), nil
}
