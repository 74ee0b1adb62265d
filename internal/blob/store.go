// Package blob abstracts the image store behind a byte-in, URL-out
// contract. Listing photo uploads go through Store so the disk
// implementation can be swapped for a hosted object store without
// touching the handlers.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store accepts a file and returns its public URL.
type Store interface {
	Put(ctx context.Context, filename string, data []byte) (string, error)
}

// DiskStore writes blobs under Root and serves them from BaseURL.
type DiskStore struct {
	Root    string // local directory, created on demand
	BaseURL string // public prefix, e.g. http://localhost:8080/uploads
}

// NewDiskStore returns a DiskStore rooted at dir.
func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{Root: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Put stores the bytes under a random name that keeps the original
// extension and returns the public URL.
func (s *DiskStore) Put(_ context.Context, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return "", fmt.Errorf("blob: mkdir %s: %w", s.Root, err)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	path := filepath.Join(s.Root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", path, err)
	}
	return s.BaseURL + "/" + name, nil
}
