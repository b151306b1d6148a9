package matrixstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/matrixstore/codec"
	"github.com/hupe1980/matrixstore/dimension"
	"github.com/hupe1980/matrixstore/internal/mmap"
	"github.com/hupe1980/matrixstore/internal/resource"
	"github.com/hupe1980/matrixstore/internal/sqlite"
)

// Store is a read-only handle on a matrix store file.
//
// A Store is safe for concurrent use. Each query gets its own cursor; the
// date and practice indexes are loaded once by Open and never change.
type Store struct {
	path string
	db   *sql.DB

	// mapping is held only with WithPrefetch.
	mapping *mmap.Mapping

	dates     *dimension.Index
	practices *dimension.Index

	codec   codec.Codec
	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller

	mu     sync.Mutex
	live   map[*Rows]struct{}
	closed atomic.Bool
}

// Open opens the matrix store file at path read-only and loads its date and
// practice indexes.
//
// It returns ErrFileNotFound if path does not exist and ErrNotDatabase if
// the file is not a SQLite database.
func Open(ctx context.Context, path string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)
	return open(ctx, path, o)
}

func open(ctx context.Context, path string, o options) (s *Store, err error) {
	start := time.Now()
	defer func() {
		o.metricsCollector.RecordOpen(time.Since(start), err)
		if err != nil {
			o.logger.LogOpen(ctx, path, 0, 0, err)
		}
	}()

	m, err := openMapping(path)
	if err != nil {
		return nil, err
	}
	if o.prefetch {
		if err := m.Advise(mmap.AccessWillNeed); err != nil {
			o.logger.WarnContext(ctx, "prefetch advice failed", "path", path, "error", err)
		}
	} else {
		_ = m.Close()
		m = nil
	}
	defer func() {
		if err != nil && m != nil {
			_ = m.Close()
		}
	}()

	dsn, err := sqlite.ReadOnlyDSN(path, sqlite.ReadOnlyConfig{MmapSize: o.mmapSize})
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(sqlite.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("matrixstore: open %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("matrixstore: open %s: %w", path, err)
	}

	dates, err := dimension.Load(ctx, db, "date", o.dates.table, o.dates.column)
	if err != nil {
		return nil, err
	}
	practices, err := dimension.Load(ctx, db, "practice", o.practices.table, o.practices.column)
	if err != nil {
		return nil, err
	}

	s = &Store{
		path:      path,
		db:        db,
		mapping:   m,
		dates:     dates,
		practices: practices,
		codec:     o.codec,
		logger:    o.logger.WithPath(path).WithShape(practices.Len(), dates.Len()),
		metrics:   o.metricsCollector,
		rc:        resource.NewController(resource.Config{MaxConcurrentQueries: o.maxQueries}),
		live:      make(map[*Rows]struct{}),
	}
	o.logger.LogOpen(ctx, path, practices.Len(), dates.Len(), nil)
	return s, nil
}

// openMapping maps path and checks the SQLite header.
func openMapping(path string) (*mmap.Mapping, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("matrixstore: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotDatabase, path)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("matrixstore: map %s: %w", path, err)
	}
	header := make([]byte, len(sqlite.Header))
	if n, _ := m.ReadAt(header, 0); n != len(header) || string(header) != sqlite.Header {
		_ = m.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotDatabase, path)
	}
	return m, nil
}

// Path returns the path the store was opened from.
func (s *Store) Path() string { return s.path }

// Codec returns the codec used to decode blob columns.
func (s *Store) Codec() codec.Codec { return s.codec }

// Query runs query and decodes every blob value with the store's codec.
// All other values pass through unchanged.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	return s.query(ctx, nil, query, args)
}

// QueryColumns runs query with declared column kinds. KindVector columns
// must hold blobs or NULL; KindScalar columns pass through unchanged, so a
// blob in a scalar column stays opaque []byte.
func (s *Store) QueryColumns(ctx context.Context, cols Columns, query string, args ...any) (*Rows, error) {
	for i, k := range cols {
		if k != KindScalar && k != KindVector {
			return nil, fmt.Errorf("matrixstore: column %d declared as %s", i, k)
		}
	}
	if cols == nil {
		cols = Columns{}
	}
	return s.query(ctx, cols, query, args)
}

// QueryOne returns the first row of Query. It returns ErrNoResult if there
// are no rows. Remaining rows are discarded.
func (s *Store) QueryOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return first(rows)
}

// QueryOneColumns is QueryOne with declared column kinds.
func (s *Store) QueryOneColumns(ctx context.Context, cols Columns, query string, args ...any) (Row, error) {
	rows, err := s.QueryColumns(ctx, cols, query, args...)
	if err != nil {
		return nil, err
	}
	return first(rows)
}

func first(rows *Rows) (Row, error) {
	defer rows.Close()
	if rows.Next() {
		return rows.Row(), nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoResult
}

func (s *Store) query(ctx context.Context, cols Columns, query string, args []any) (*Rows, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()

	if err := s.rc.AcquireQuery(ctx); err != nil {
		return nil, fmt.Errorf("matrixstore: wait for query slot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.rc.ReleaseQuery()
		if s.closed.Load() {
			return nil, ErrClosed
		}
		err = fmt.Errorf("matrixstore: query: %w", err)
		s.metrics.RecordQuery(0, time.Since(start), err)
		s.logger.LogQuery(ctx, query, 0, time.Since(start), err)
		return nil, err
	}

	names, err := rows.Columns()
	if err == nil && cols != nil && len(cols) != len(names) {
		err = fmt.Errorf("%w: declared %d, query returns %d", ErrColumnMismatch, len(cols), len(names))
	}
	if err != nil {
		_ = rows.Close()
		s.rc.ReleaseQuery()
		s.metrics.RecordQuery(0, time.Since(start), err)
		return nil, err
	}

	r := newRows(ctx, s, query, rows, names, cols, start)
	if !s.track(r) {
		_ = r.Close()
		return nil, ErrClosed
	}
	return r, nil
}

// track registers r so Close can release its cursor. It fails once the
// store is closed.
func (s *Store) track(r *Rows) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.live[r] = struct{}{}
	return true
}

func (s *Store) untrack(r *Rows) {
	s.mu.Lock()
	delete(s.live, r)
	s.mu.Unlock()
}

// InFlight returns the number of open row sequences.
func (s *Store) InFlight() int64 {
	return s.rc.InFlight()
}

// Dates returns the date index.
func (s *Store) Dates() (*dimension.Index, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	return s.dates, nil
}

// Practices returns the practice index.
func (s *Store) Practices() (*dimension.Index, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	return s.practices, nil
}

// DateOffset returns the column offset of a date key such as "2024-01-01".
func (s *Store) DateOffset(date string) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.dates.Offset(date)
}

// PracticeOffset returns the row offset of a practice code.
func (s *Store) PracticeOffset(code string) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.practices.Offset(code)
}

// Shape returns the matrix dimensions every full vector in the file has.
func (s *Store) Shape() (practices, dates int, err error) {
	if s.closed.Load() {
		return 0, 0, ErrClosed
	}
	return s.practices.Len(), s.dates.Len(), nil
}

// Close releases the database handle, every open row sequence's cursor and
// any prefetch mapping. Queries after Close return ErrClosed, as does a
// second Close. Open row sequences stop with ErrClosed on their next read.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return ErrClosed
	}
	live := make([]*sql.Rows, 0, len(s.live))
	for r := range s.live {
		live = append(live, r.rows)
	}
	s.mu.Unlock()

	var errs []error
	for _, rows := range live {
		if err := rows.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.mapping != nil {
		if err := s.mapping.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	s.logger.LogClose(context.Background(), s.path, err)
	return err
}
