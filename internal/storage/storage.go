package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains the file storage abstraction used by the ingestion
// pipeline. Two backends exist: a local upload directory and an S3-compatible
// object store. Keys are always service-generated names, never user input.

// PutObjectOptions define optional parameters for storing objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and
// the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the backend-neutral file store interface.
// Methods use context and streaming readers; implementations must be safe for
// concurrent use and must refuse to overwrite an existing key.
type Storage interface {
	// Put stores an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}
