// Package media handles files posted to the media endpoint.
package media

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("media not found")
)

// Media is the record kept for an uploaded file.
type Media struct {
	Type        string    `json:"type"`
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename,omitempty"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	LastAction  string    `json:"lastAction"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Repository keeps media records by URL and remembers the latest upload.
type Repository interface {
	Save(ctx context.Context, m *Media) error
	Get(ctx context.Context, url string) (*Media, error)
	// Last returns the most recently saved record.
	Last(ctx context.Context) (*Media, error)
}
