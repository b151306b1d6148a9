package matrixstore

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/hupe1980/matrixstore/blobstore"
	"github.com/hupe1980/matrixstore/internal/resource"
)

// OpenRemote fetches the published file name from bs into cacheDir and
// opens the local copy.
//
// The download is atomic: a partially written file is never visible under
// its final name. If cacheDir already holds a copy of the same size the
// download is skipped.
func OpenRemote(ctx context.Context, bs blobstore.BlobStore, name, cacheDir string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)

	dst := filepath.Join(cacheDir, path.Base(name))
	start := time.Now()
	res, err := blobstore.Fetch(ctx, bs, name, dst, func(fo *blobstore.FetchOptions) {
		fo.Controller = resource.NewController(resource.Config{IOLimitBytesPerSec: o.fetchRateLimit})
	})
	o.metricsCollector.RecordFetch(res.Bytes, res.Skipped, time.Since(start), err)
	o.logger.LogFetch(ctx, name, res.Bytes, res.Skipped, err)
	if err != nil {
		return nil, fmt.Errorf("matrixstore: fetch %s: %w", name, err)
	}

	return open(ctx, dst, o)
}
