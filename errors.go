package matrixstore

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/hupe1980/matrixstore/codec"
	"github.com/hupe1980/matrixstore/dimension"
)

var (
	// ErrFileNotFound is returned by Open when the data file does not exist.
	// It also matches fs.ErrNotExist.
	ErrFileNotFound = fmt.Errorf("matrixstore: file not found: %w", fs.ErrNotExist)

	// ErrNotDatabase is returned by Open when the file is not a SQLite database.
	ErrNotDatabase = errors.New("matrixstore: not a SQLite database")

	// ErrNoResult is returned by QueryOne when the query yields no rows.
	ErrNoResult = errors.New("matrixstore: query returned no rows")

	// ErrClosed is returned when using a store after Close.
	ErrClosed = errors.New("matrixstore: store is closed")

	// ErrColumnMismatch is returned by QueryColumns when the declared column
	// kinds do not match the number of result columns.
	ErrColumnMismatch = errors.New("matrixstore: column count mismatch")

	// ErrCorruptPayload matches any blob that fails to decode.
	ErrCorruptPayload = codec.ErrCorruptPayload

	// ErrUnknownKey matches lookups of a date or practice not in the file.
	ErrUnknownKey = dimension.ErrUnknownKey
)

// DecodeError reports a blob cell that failed to decode.
//
// The codec error (a *codec.CorruptPayloadError) can be accessed via errors.Unwrap.
type DecodeError struct {
	Row    int
	Column int
	Name   string
	cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("matrixstore: row %d column %d (%s): %v", e.Row, e.Column, e.Name, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// ColumnTypeError reports a value whose runtime type does not fit the
// column's declared kind, such as text in a vector column.
type ColumnTypeError struct {
	Row      int
	Column   int
	Name     string
	Declared Kind
	Got      string
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("matrixstore: row %d column %d (%s): declared %s, got %s", e.Row, e.Column, e.Name, e.Declared, e.Got)
}
