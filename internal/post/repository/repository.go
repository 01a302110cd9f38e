package repository

import (
	"context"
	"errors"

	"github.com/inkpub/micropub/internal/post"
)

var (
	ErrNotFound = errors.New("post not found")
)

// Repository keeps post records keyed by their public URL.
type Repository interface {
	// Save inserts or replaces the record for p.URL.
	Save(ctx context.Context, p *post.Post) error
	Get(ctx context.Context, url string) (*post.Post, error)
	List(ctx context.Context) ([]*post.Post, error)
}
