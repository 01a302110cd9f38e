package mf2

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoSource is returned by a resolver that has no mf2 for the URL.
var ErrNoSource = errors.New("no source for url")

// Resolver turns a URL into its mf2 item, keeping only the named
// properties when any are given.
type Resolver interface {
	Resolve(ctx context.Context, url string, properties []string) (*Item, error)
}

// LookupFunc finds a stored document by URL. A nil document with a nil
// error means the URL is unknown.
type LookupFunc func(ctx context.Context, url string) (*Document, error)

// DocumentResolver answers from documents this server already holds.
type DocumentResolver struct {
	Lookup LookupFunc
}

func (r *DocumentResolver) Resolve(ctx context.Context, url string, properties []string) (*Item, error) {
	doc, err := r.Lookup(ctx, url)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Mf2 == nil {
		return nil, ErrNoSource
	}
	return doc.Mf2.Clone().Filter(properties), nil
}

// HTTPResolver fetches the URL and parses mf2 from the returned HTML.
type HTTPResolver struct {
	Client *http.Client
}

func (r *HTTPResolver) Resolve(ctx context.Context, url string, properties []string) (*Item, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, ErrNoSource
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}
	item, err := Parse(resp.Body, resp.Request.URL)
	if err != nil {
		return nil, err
	}
	return item.Filter(properties), nil
}

// ChainResolver tries each resolver in turn, moving on only when one
// reports ErrNoSource. Any other error is returned as is.
type ChainResolver []Resolver

func (c ChainResolver) Resolve(ctx context.Context, url string, properties []string) (*Item, error) {
	for _, r := range c {
		item, err := r.Resolve(ctx, url, properties)
		if errors.Is(err, ErrNoSource) {
			continue
		}
		return item, err
	}
	return nil, ErrNoSource
}
