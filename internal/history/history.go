// Package history keeps an append-only log of the actions taken on posts
// and media.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Recorder appends an entry for action. data is any JSON/BSON encodable
// value, usually the post document.
type Recorder interface {
	Record(ctx context.Context, action string, data any) error
}

// Entry is one history record: a timestamp plus the action name mapped to
// its data, e.g. {"timestamp": "1566082598", "create": {...}}.
type Entry map[string]any

// File is the on-disk history document.
type File struct {
	Entries []Entry `json:"entries"`
}

var now = time.Now

func newEntry(action string, data any) Entry {
	return Entry{
		"timestamp": strconv.FormatInt(now().Unix(), 10),
		action:      data,
	}
}

// FileRecorder appends entries to a JSON file, creating it on first use.
type FileRecorder struct {
	mu   sync.Mutex
	path string
}

func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

func (r *FileRecorder) Record(ctx context.Context, action string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.append(newEntry(action, data)); err != nil {
		return fmt.Errorf("unable to update %s", r.path)
	}
	return nil
}

func (r *FileRecorder) append(e Entry) error {
	h, err := r.Read()
	if err != nil {
		return err
	}
	h.Entries = append(h.Entries, e)
	b, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o644)
}

// Read returns the current history. A missing file is an empty history.
func (r *FileRecorder) Read() (*File, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{Entries: []Entry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var h File
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, err
	}
	if h.Entries == nil {
		h.Entries = []Entry{}
	}
	return &h, nil
}

// Noop discards every entry.
type Noop struct{}

func (Noop) Record(context.Context, string, any) error { return nil }
