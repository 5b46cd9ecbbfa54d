// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"
	"io"
)

// ObjectStorage defines the secondary port a dataset store must
// provide. Implementations enumerate the GeoPackage files a store
// carries and hand their contents to the loader.
type ObjectStorage interface {
	// List enumerates the dataset files the store currently holds.
	List(ctx context.Context) ([]StorageObject, error)

	// Download stages a dataset at dest on the local filesystem so the
	// SQLite driver can open it.
	Download(ctx context.Context, key string, dest string) error

	// GetReader streams a dataset without staging it on disk.
	GetReader(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether the store still holds the dataset.
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageObject describes one dataset file in a store.
type StorageObject struct {
	Key          string // Store-relative path of the dataset
	Size         int64  // Size in bytes
	LastModified int64  // Unix timestamp
	ETag         string // Content hash, when the store provides one
}

// StorageType names a dataset store backend.
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeAzure StorageType = "azure"
	StorageTypeHTTP  StorageType = "http"
	StorageTypeLocal StorageType = "local"
)
