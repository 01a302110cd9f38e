package mf2

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entryHTML = `<!doctype html>
<html><body>
<div class="h-card"><a class="p-name u-url" href="https://website.example">Owner</a></div>
<article class="h-entry">
  <h1 class="p-name">Hello</h1>
  <time class="dt-published" datetime="2019-08-17T23:56:38+01:00">17 August</time>
  <a class="u-url" href="https://website.example/foo">permalink</a>
  <span class="p-category">foo</span> <span class="p-category">bar</span>
  <div class="e-content"><p>hello <b>world</b></p></div>
  <a class="p-author h-card" href="https://website.example">Owner</a>
</article>
</body></html>`

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestParsePrefersHEntry(t *testing.T) {
	item, err := Parse(strings.NewReader(entryHTML), mustURL(t, "https://website.example/foo"))
	require.NoError(t, err)
	require.Equal(t, []string{"h-entry"}, item.Type)

	p := item.Properties
	assert.Equal(t, []any{"Hello"}, p["name"])
	assert.Equal(t, []any{"2019-08-17T23:56:38+01:00"}, p["published"])
	assert.Equal(t, []any{"https://website.example/foo"}, p["url"])
	assert.Equal(t, []any{"foo", "bar"}, p["category"])

	content, ok := p["content"][0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "<p>hello <b>world</b></p>", content["html"])
	assert.Equal(t, "hello world", content["value"])

	author, ok := p["author"][0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"h-card"}, author["type"])
	assert.Equal(t, "Owner", author["value"])
}

func TestParseResolvesRelativeURLs(t *testing.T) {
	page := `<div class="h-entry"><a class="u-url" href="/posts/1">Hello</a><img class="u-photo" src="a.jpg"></div>`
	item, err := Parse(strings.NewReader(page), mustURL(t, "https://website.example/notes/"))
	require.NoError(t, err)

	assert.Equal(t, []any{"https://website.example/posts/1"}, item.Properties["url"])
	assert.Equal(t, []any{"https://website.example/notes/a.jpg"}, item.Properties["photo"])
	assert.Contains(t, item.Properties.FirstString("name"), "Hello")
}

func TestParseImpliesProperties(t *testing.T) {
	page := `<a class="h-card" href="/about"><img src="/me.jpg">Owner</a>`
	item, err := Parse(strings.NewReader(page), mustURL(t, "https://website.example/"))
	require.NoError(t, err)

	assert.Equal(t, []string{"h-card"}, item.Type)
	assert.Equal(t, []any{"https://website.example/about"}, item.Properties["url"])
	assert.Equal(t, []any{"https://website.example/me.jpg"}, item.Properties["photo"])
	assert.Contains(t, item.Properties.FirstString("name"), "Owner")
}

func TestParseFindsEntryInsideFeed(t *testing.T) {
	page := `<div class="h-feed"><h1 class="p-name">Notes</h1>
<div class="h-entry"><p class="p-name">First</p></div></div>`
	item, err := Parse(strings.NewReader(page), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"h-entry"}, item.Type)
	assert.Equal(t, "First", item.Properties.FirstString("name"))
}

func TestParseWithoutMicroformats(t *testing.T) {
	_, err := Parse(strings.NewReader(`<html><body><p>plain</p></body></html>`), nil)
	require.Error(t, err)
}
