package mf2

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"golang.org/x/net/html"
	"willnorris.com/go/microformats"
)

// Parse reads an HTML page and returns the first h-entry found in it, or
// the first root microformat when the page has no h-entry. Relative URLs
// are resolved against base (or the page's <base href>); implied name,
// photo and url properties are filled in.
func Parse(r io.Reader, base *url.URL) (*Item, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if base == nil {
		base = &url.URL{}
	}
	data := microformats.ParseNode(doc, base)
	if len(data.Items) == 0 {
		return nil, fmt.Errorf("no microformats found")
	}
	root := findEntry(data.Items)
	if root == nil {
		root = data.Items[0]
	}
	return fromMicroformat(root)
}

// findEntry searches items and their children depth first, so an h-entry
// inside an h-feed is found too.
func findEntry(items []*microformats.Microformat) *microformats.Microformat {
	for _, m := range items {
		for _, t := range m.Type {
			if t == "h-entry" {
				return m
			}
		}
		if found := findEntry(m.Children); found != nil {
			return found
		}
	}
	return nil
}

// fromMicroformat converts through JSON so embedded microformats and
// {html, value} objects become the plain maps used everywhere else.
func fromMicroformat(m *microformats.Microformat) (*Item, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var item Item
	if err := json.Unmarshal(b, &item); err != nil {
		return nil, err
	}
	if item.Properties == nil {
		item.Properties = Properties{}
	}
	return &item, nil
}
