package mf2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPropertiesCloneDoesNotShareSlices(t *testing.T) {
	p := Properties{"category": {"foo", "bar"}}
	c := p.Clone()
	c["category"][0] = "changed"
	c.Append("category", "baz")

	require.Equal(t, []any{"foo", "bar"}, p["category"])
	require.Equal(t, []any{"changed", "bar", "baz"}, c["category"])
}

func TestPropertiesSetRemovesEmpty(t *testing.T) {
	p := Properties{"category": {"foo"}}
	p.Set("category", nil)
	_, ok := p["category"]
	require.False(t, ok)

	p.Set("content", []any{"hello"})
	require.Equal(t, "hello", p.FirstString("content"))
}

func TestPropertiesWithout(t *testing.T) {
	p := Properties{
		"category": {"foo", "bar", "foo"},
		"content":  {map[string]any{"html": "<b>x</b>"}},
	}
	require.Equal(t, []any{"bar"}, p.Without("category", []any{"foo"}))
	require.Empty(t, p.Without("content", []any{map[string]any{"html": "<b>x</b>"}}))
	require.Empty(t, p.Without("missing", []any{"x"}))
}

func TestItemFilter(t *testing.T) {
	item := &Item{
		Type: []string{"h-entry"},
		Properties: Properties{
			"content":  {"hello"},
			"category": {"foo"},
		},
	}
	require.Same(t, item, item.Filter(nil))

	got := item.Filter([]string{"content", "missing"})
	require.Nil(t, got.Type)
	require.Equal(t, Properties{"content": {"hello"}}, got.Properties)
}

func TestDocumentClone(t *testing.T) {
	doc := &Document{
		Type: "note",
		Path: "foo.md",
		URL:  "https://website.example/foo",
		Mf2:  &Item{Type: []string{"h-entry"}, Properties: Properties{"content": {"a"}}},
	}
	c := doc.Clone()
	c.Mf2.Properties["content"] = []any{"b"}

	require.Equal(t, "a", doc.Properties().FirstString("content"))
	require.Equal(t, doc.URL, c.URL)
	require.Nil(t, (*Document)(nil).Clone())
}
