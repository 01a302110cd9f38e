package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sync"
)

// Commit is one write recorded by MemoryStore.
type Commit struct {
	Op      string
	Path    string
	Message string
}

// MemoryStore keeps files in memory and records every commit. Used for
// local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	files   map[string][]byte
	commits []Commit
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (m *MemoryStore) CreateFile(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error) {
	return m.write("create", path, content, opts), nil
}

func (m *MemoryStore) UpdateFile(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error) {
	return m.write("update", path, content, opts), nil
}

func (m *MemoryStore) write(op, path string, content []byte, opts Options) *CommitResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), content...)
	m.commits = append(m.commits, Commit{Op: op, Path: path, Message: opts.Message})
	sum := sha1.Sum(content)
	return &CommitResult{Path: path, Message: opts.Message, SHA: hex.EncodeToString(sum[:])}
}

func (m *MemoryStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.files[path]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStore) DeleteFile(ctx context.Context, path string, opts Options) (*CommitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return nil, ErrNotFound
	}
	delete(m.files, path)
	m.commits = append(m.commits, Commit{Op: "delete", Path: path, Message: opts.Message})
	return &CommitResult{Path: path, Message: opts.Message}, nil
}

// Commits returns the recorded commits, oldest first.
func (m *MemoryStore) Commits() []Commit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Commit(nil), m.commits...)
}
