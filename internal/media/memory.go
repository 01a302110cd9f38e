package media

import (
	"context"
	"sync"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Media
	last  string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]Media)}
}

func (r *MemoryRepository) Save(ctx context.Context, m *Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[m.URL] = *m
	r.last = m.URL
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, url string) (*Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.items[url]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *MemoryRepository) Last(ctx context.Context) (*Media, error) {
	r.mu.RLock()
	url := r.last
	r.mu.RUnlock()
	if url == "" {
		return nil, ErrNotFound
	}
	return r.Get(ctx, url)
}
