// Package mmap maps matrix store files read-only into memory.
//
// The store uses a mapping to validate a data file before handing it to the
// SQLite driver and, when prefetch is enabled, to ask the kernel to pull the
// whole file into the page cache so that the first queries do not pay for
// cold reads. Local blob stores use it for zero-copy ReadAt.
//
//	m, err := mmap.Open("matrixstore.sqlite")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessWillNeed)
//
// Unix uses mmap(2) and madvise(2) through golang.org/x/sys/unix; Windows
// uses CreateFileMapping/MapViewOfFile and treats Advise as a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent; callers must
// not use slices returned by Bytes after Close.
package mmap
