package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored blob
type UploadResult struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	Path     string `json:"path"`
}

// ProgressFunc receives a 0-100 percentage as an upload advances
type ProgressFunc func(pct float64)

// BlobStore stores media blobs under folder-scoped, collision-safe names
type BlobStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, filename, folder string, progress ProgressFunc) (*UploadResult, error)
	Delete(ctx context.Context, path string) error
}
