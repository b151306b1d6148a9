package dimension

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey is matched by lookups for keys absent from an index.
	ErrUnknownKey = errors.New("unknown key")

	// ErrInvalidIndex is matched by construction failures caused by a
	// mapping that is not total.
	ErrInvalidIndex = errors.New("invalid dimension index")
)

// UnknownKeyError is returned by Offset for a key the index does not hold.
// This is expected for keys outside the covered range, for example a
// practice that did not exist during the period.
type UnknownKeyError struct {
	Axis string
	Key  string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("%s: unknown key %q", e.Axis, e.Key)
}

// Is reports whether target is ErrUnknownKey.
func (e *UnknownKeyError) Is(target error) bool { return target == ErrUnknownKey }

// UnknownOffsetError is returned by Key for an offset outside [0, Len()).
type UnknownOffsetError struct {
	Axis   string
	Offset int
	Len    int
}

func (e *UnknownOffsetError) Error() string {
	return fmt.Sprintf("%s: offset %d outside [0, %d)", e.Axis, e.Offset, e.Len)
}

// InvalidIndexError reports a lookup relation that does not form a total
// mapping onto [0, N).
type InvalidIndexError struct {
	Axis   string
	Reason string
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("%s: invalid dimension index: %s", e.Axis, e.Reason)
}

// Is reports whether target is ErrInvalidIndex.
func (e *InvalidIndexError) Is(target error) bool { return target == ErrInvalidIndex }
