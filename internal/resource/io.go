package resource

import (
	"context"
	"io"
)

// RateLimitedReader wraps an io.Reader with the controller's IO limit.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	// WaitN rejects reservations larger than the burst.
	if burst := r.rc.IOBurst(); burst > 0 && len(p) > burst {
		p = p[:burst]
	}
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// RateLimitedWriterAt wraps an io.WriterAt with the controller's IO limit.
type RateLimitedWriterAt struct {
	ctx context.Context
	w   io.WriterAt
	rc  *Controller
}

// NewRateLimitedWriterAt creates a new RateLimitedWriterAt.
func NewRateLimitedWriterAt(ctx context.Context, w io.WriterAt, rc *Controller) *RateLimitedWriterAt {
	return &RateLimitedWriterAt{ctx: ctx, w: w, rc: rc}
}

func (w *RateLimitedWriterAt) WriteAt(p []byte, off int64) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := p
		if burst := w.rc.IOBurst(); burst > 0 && len(chunk) > burst {
			chunk = chunk[:burst]
		}
		if err := w.rc.AcquireIO(w.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := w.w.WriteAt(chunk, off)
		written += n
		off += int64(n)
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}
