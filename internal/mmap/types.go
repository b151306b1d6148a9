package mmap

import "errors"

// AccessPattern is a paging hint passed to Advise.
type AccessPattern int

// AccessWillNeed asks the kernel to start reading the whole mapping in.
// The store uses it for WithPrefetch.
const AccessWillNeed AccessPattern = 1

var (
	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files too large for the address space.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned by ReadAt for negative offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
