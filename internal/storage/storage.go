// Package storage contains read access to S3-compatible object stores.
// Objects are streamed; callers decide how much to buffer.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Bucket       string
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// ObjectReader is a reusable, S3-compatible read-only client.
// Unlike a bucket-scoped store, the bucket is chosen per call because image
// locators name their own bucket.
type ObjectReader interface {
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
}
