// Package storage adapts the stores a deployment pulls GeoPackage
// datasets from: a local directory, S3, Azure Blob Storage, or a plain
// HTTP file index.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// isDatasetKey reports whether a storage key names a GeoPackage dataset.
func isDatasetKey(key string) bool {
	return strings.EqualFold(filepath.Ext(key), ".gpkg")
}

// relativeKey strips a configured store prefix from an object key.
func relativeKey(key, prefix string) string {
	key = strings.TrimPrefix(key, prefix)
	return strings.TrimPrefix(key, "/")
}

// stageFile copies a dataset stream to dest so the SQLite driver can
// open it, creating the parent directory as needed.
func stageFile(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return err
	}
	f, err := os.Create(dest) //#nosec G304 -- dest is a controlled local path
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(f, r)
	return err
}
