package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const copyChunkSize = 32 * 1024

// DiskStore keeps blobs on the local filesystem under root, served back at
// baseURL. Filenames are prefixed with a millisecond timestamp so repeated
// uploads of the same file never collide.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload streams the reader to disk, reporting progress per chunk. size <= 0
// disables percentage reporting until completion.
func (d *DiskStore) Upload(ctx context.Context, r io.Reader, size int64, filename, folder string, progress ProgressFunc) (*UploadResult, error) {
	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(filename))
	relPath := path.Join(folder, name)

	dir := filepath.Join(d.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media folder: %w", err)
	}

	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create media file: %w", err)
	}

	var written int64
	buf := make([]byte, copyChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			f.Close()
			os.Remove(dst)
			return nil, err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				f.Close()
				os.Remove(dst)
				return nil, fmt.Errorf("failed to write media file: %w", err)
			}
			written += int64(n)
			if progress != nil && size > 0 {
				pct := float64(written) / float64(size) * 100
				if pct > 100 {
					pct = 100
				}
				progress(pct)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			os.Remove(dst)
			return nil, fmt.Errorf("failed to read upload: %w", readErr)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("failed to finish media file: %w", err)
	}

	if progress != nil {
		progress(100)
	}

	return &UploadResult{
		URL:      d.baseURL + "/" + relPath,
		FileName: name,
		Path:     relPath,
	}, nil
}

// Delete removes a blob by its upload path
func (d *DiskStore) Delete(_ context.Context, relPath string) error {
	full := filepath.Join(d.root, filepath.FromSlash(relPath))

	// Refuse paths that escape the storage root
	if rel, err := filepath.Rel(d.root, full); err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid blob path: %s", relPath)
	}

	if err := os.Remove(full); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
