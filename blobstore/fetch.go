package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/matrixstore/internal/resource"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkSize is the size of one ranged read during Fetch.
	DefaultChunkSize = 8 << 20
	// DefaultConcurrency is the number of ranged reads in flight during Fetch.
	DefaultConcurrency = 4
)

// FetchOptions configures Fetch.
type FetchOptions struct {
	// ChunkSize is the size of one ranged read. Default: DefaultChunkSize.
	ChunkSize int64
	// Concurrency bounds parallel ranged reads. Default: DefaultConcurrency.
	Concurrency int
	// Controller applies an IO rate limit to transferred bytes. May be nil.
	Controller *resource.Controller
	// Force refetches even when a local copy of the same size exists.
	Force bool
}

// FetchResult describes a completed Fetch.
type FetchResult struct {
	Path     string
	Bytes    int64
	Skipped  bool
	Duration time.Duration
}

// Fetch copies blob name from bs to dst.
//
// The data is written to a temporary file in dst's directory and renamed into
// place once complete, so dst is either absent, the previous copy, or the
// full new copy. When dst already exists with the blob's size the copy is
// skipped; published files are immutable, so equal size means same file.
func Fetch(ctx context.Context, bs BlobStore, name, dst string, optFns ...func(*FetchOptions)) (FetchResult, error) {
	opts := FetchOptions{
		ChunkSize:   DefaultChunkSize,
		Concurrency: DefaultConcurrency,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	start := time.Now()
	res := FetchResult{Path: dst}

	blob, err := bs.Open(ctx, name)
	if err != nil {
		return res, err
	}
	defer blob.Close()

	size := blob.Size()
	if !opts.Force {
		if fi, err := os.Stat(dst); err == nil && fi.Mode().IsRegular() && fi.Size() == size {
			res.Skipped = true
			res.Bytes = size
			res.Duration = time.Since(start)
			return res, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return res, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return res, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Truncate(size); err != nil {
		return res, err
	}

	var n int64
	if d, ok := bs.(Downloader); ok {
		// The downloader pulls the data itself; throttle its writes.
		n, err = d.Download(ctx, name, resource.NewRateLimitedWriterAt(ctx, tmp, opts.Controller))
	} else {
		n, err = copyRanges(ctx, blob, tmp, size, opts)
	}
	if err != nil {
		return res, fmt.Errorf("blobstore: fetch %s: %w", name, err)
	}
	if n != size {
		return res, fmt.Errorf("blobstore: fetch %s: wrote %d of %d bytes", name, n, size)
	}

	if err := tmp.Sync(); err != nil {
		return res, err
	}
	if err := tmp.Close(); err != nil {
		return res, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		committed = true
		return res, err
	}
	committed = true

	res.Bytes = size
	res.Duration = time.Since(start)
	return res, nil
}

// copyRanges reads blob in ChunkSize pieces, Concurrency at a time. Reads
// share the controller's IO limit.
func copyRanges(ctx context.Context, blob Blob, w io.WriterAt, size int64, opts FetchOptions) (int64, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for off := int64(0); off < size; off += opts.ChunkSize {
		length := min(opts.ChunkSize, size-off)
		g.Go(func() error {
			rc, err := blob.ReadRange(gctx, off, length)
			if err != nil {
				return err
			}
			defer rc.Close()

			r := resource.NewRateLimitedReader(gctx, rc, opts.Controller)
			n, err := io.Copy(io.NewOffsetWriter(w, off), r)
			if err != nil {
				return err
			}
			if n != length {
				return fmt.Errorf("range at %d: %w", off, io.ErrUnexpectedEOF)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, err
	}
	return size, nil
}
