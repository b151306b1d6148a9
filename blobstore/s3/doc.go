// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("matrixstore/"),
//	    s3.WithRegion("eu-west-2"),
//	)
//
//	db, err := matrixstore.OpenRemote(ctx, store, "matrixstore.sqlite", "/var/cache/matrixstore")
//
// # Features
//
//   - Range reads for partial fetches
//   - Concurrent multi-part downloads through the S3 transfer manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
