// Package store holds the content stores posts and media are committed to.
// Backends return their own errors unwrapped so callers see the original
// cause text.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("file not found")
)

// Options accompany every write.
type Options struct {
	Message string
}

// CommitResult describes a successful write.
type CommitResult struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	SHA     string `json:"sha,omitempty"`
}

// Store is a version-controlled file store addressed by relative path.
type Store interface {
	CreateFile(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	UpdateFile(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error)
	DeleteFile(ctx context.Context, path string, opts Options) (*CommitResult, error)
}
