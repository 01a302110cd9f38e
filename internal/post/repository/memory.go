package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/inkpub/micropub/internal/post"
)

// MemoryRepo is an in-memory repository used when no database is
// configured and in unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*post.Post
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*post.Post)}
}

func (m *MemoryRepo) Save(ctx context.Context, p *post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	c := copyPost(p)
	if prev, ok := m.store[p.URL]; ok {
		c.CreatedAt = prev.CreatedAt
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	m.store[p.URL] = c
	p.CreatedAt, p.UpdatedAt = c.CreatedAt, c.UpdatedAt
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, url string) (*post.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[url]; ok {
		return copyPost(p), nil
	}
	return nil, ErrNotFound
}

// List returns every post, oldest first.
func (m *MemoryRepo) List(ctx context.Context) ([]*post.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*post.Post, 0, len(m.store))
	for _, p := range m.store {
		out = append(out, copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].URL < out[j].URL
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func copyPost(p *post.Post) *post.Post {
	c := *p
	c.Document = *p.Document.Clone()
	return &c
}
