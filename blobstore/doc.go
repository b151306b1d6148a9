// Package blobstore provides read access to published matrix store files.
//
// Matrix store files are built elsewhere and published to object storage.
// A BlobStore opens them by name; Fetch copies one into a local cache
// directory so the store can open it through SQLite.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap support
//   - MemoryStore: In-memory store for tests
//   - s3.Store: Amazon S3 with range reads and managed downloads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Backends with a faster whole-object download path can also implement
// Downloader, which Fetch prefers over ranged reads.
package blobstore
