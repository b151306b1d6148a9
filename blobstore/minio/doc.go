// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and any other S3-compatible service (Ceph, Garage,
// SeaweedFS) without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.New("localhost:9000", "published", func(o *minioblob.Options) {
//	    o.AccessKey = "minioadmin"
//	    o.SecretKey = "minioadmin"
//	    o.Prefix = "matrixstore/"
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	db, err := matrixstore.OpenRemote(ctx, store, "matrixstore.sqlite", cacheDir)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
