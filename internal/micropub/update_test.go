package micropub

import (
	"encoding/json"
	"testing"

	"github.com/inkpub/micropub/internal/mf2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postData() *mf2.Document {
	return &mf2.Document{
		Type: "note",
		Path: "foo.md",
		URL:  "https://website.example/foo",
		Mf2: &mf2.Item{
			Type: []string{"h-entry"},
			Properties: mf2.Properties{
				"content":   {"hello world"},
				"published": {"2019-08-17T23:56:38.977+01:00"},
				"category":  {"foo", "bar"},
				"slug":      {"baz"},
			},
		},
	}
}

// instruction decodes a JSON request body the way the HTTP layer does.
func instruction(t *testing.T, body string) *Instruction {
	t.Helper()
	var ins Instruction
	require.NoError(t, json.Unmarshal([]byte(body), &ins))
	return &ins
}

func TestApplyReplacesContent(t *testing.T) {
	got, err := Apply(postData(), instruction(t, `{"action":"update","url":"https://foo.bar/baz","replace":{"content":["hello moon"]}}`))
	require.NoError(t, err)
	require.Equal(t, "hello moon", got.Properties().FirstString("content"))
}

func TestApplyAddsSyndication(t *testing.T) {
	got, err := Apply(postData(), instruction(t, `{"action":"update","url":"https://foo.bar/baz","add":{"syndication":["http://web.archive.org/web/20190818120000/https://foo.bar/baz"]}}`))
	require.NoError(t, err)
	require.Equal(t, []any{"http://web.archive.org/web/20190818120000/https://foo.bar/baz"}, got.Properties()["syndication"])
}

func TestApplyAddsCategory(t *testing.T) {
	got, err := Apply(postData(), instruction(t, `{"action":"update","url":"https://foo.bar/baz","add":{"category":["baz"]}}`))
	require.NoError(t, err)
	require.Equal(t, []any{"foo", "bar", "baz"}, got.Properties()["category"])
}

func TestApplyDeletesProperty(t *testing.T) {
	got, err := Apply(postData(), instruction(t, `{"action":"update","url":"https://foo.bar/baz","delete":["category"]}`))
	require.NoError(t, err)
	require.NotContains(t, got.Properties(), "category")
}

func TestApplyDeletesEntryInProperty(t *testing.T) {
	got, err := Apply(postData(), instruction(t, `{"action":"update","url":"https://foo.bar/baz","delete":{"category":["foo"]}}`))
	require.NoError(t, err)
	require.Equal(t, []any{"bar"}, got.Properties()["category"])
}

func TestApplyRemovesPropertyWhenLastEntryDeleted(t *testing.T) {
	got, err := Apply(postData(), instruction(t, `{"action":"update","url":"https://foo.bar/baz","delete":{"category":["foo","bar"]}}`))
	require.NoError(t, err)
	require.NotContains(t, got.Properties(), "category")
}

func TestApplyIgnoresMissingProperties(t *testing.T) {
	before := postData()
	got, err := Apply(before, instruction(t, `{"action":"update","url":"https://foo.bar/baz","delete":{"tags":["foo","bar"]}}`))
	require.NoError(t, err)
	require.Equal(t, postData().Mf2.Properties, got.Properties())
	require.NotContains(t, got.Properties(), "tags")

	got, err = Apply(before, instruction(t, `{"action":"update","url":"https://foo.bar/baz","delete":["tags"]}`))
	require.NoError(t, err)
	require.Equal(t, postData().Mf2.Properties, got.Properties())
}

func TestApplyFailsWhenDeletedPropertyIsNotArray(t *testing.T) {
	doc := postData()
	_, err := Apply(doc, instruction(t, `{"action":"update","url":"https://foo.bar/baz","delete":{"category":"foo"}}`))
	require.Error(t, err)
	require.EqualError(t, err, "category should be an array")
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.Equal(t, []any{"foo", "bar"}, doc.Properties()["category"])
}

func TestApplyFailsWithoutTarget(t *testing.T) {
	_, err := Apply(nil, instruction(t, `{"action":"update","url":"https://foo.bar/baz","add":{"syndication":["http://web.archive.org/"]}}`))
	require.ErrorIs(t, err, ErrInvalidTarget)

	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, 404, merr.Status())
	require.Equal(t, "not_found", merr.Code())
}

func TestApplyRejectsMalformedDelete(t *testing.T) {
	for _, body := range []string{
		`{"action":"update","delete":"category"}`,
		`{"action":"update","delete":42}`,
		`{"action":"update","delete":["category",1]}`,
	} {
		doc := postData()
		_, err := Apply(doc, instruction(t, body))
		require.ErrorIs(t, err, ErrInvalidInstruction, body)
		require.Equal(t, postData().Mf2.Properties, doc.Properties())
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	doc := postData()
	got, err := Apply(doc, instruction(t, `{"action":"update","replace":{"content":["changed"]},"delete":{"category":"foo"}}`))
	require.Error(t, err)
	require.Nil(t, got)
	require.Equal(t, "hello world", doc.Properties().FirstString("content"))
}

func TestApplyNeverMutatesInput(t *testing.T) {
	doc := postData()
	_, err := Apply(doc, instruction(t, `{"action":"update","replace":{"content":["x"]},"add":{"category":["baz"]},"delete":["slug"]}`))
	require.NoError(t, err)
	require.Equal(t, postData(), doc)
}

func TestApplyKeepsIdentity(t *testing.T) {
	got, err := Apply(postData(), instruction(t, `{"action":"update","replace":{"content":["x"]}}`))
	require.NoError(t, err)
	assert.Equal(t, "note", got.Type)
	assert.Equal(t, "foo.md", got.Path)
	assert.Equal(t, "https://website.example/foo", got.URL)
	assert.Equal(t, []string{"h-entry"}, got.Mf2.Type)
}

func TestApplyOrderIsDeleteReplaceAdd(t *testing.T) {
	ins := &Instruction{
		Action:  "update",
		Delete:  []string{"category"},
		Replace: mf2.Properties{"category": {"replaced"}},
		Add:     mf2.Properties{"category": {"added"}},
	}
	got, err := Apply(postData(), ins)
	require.NoError(t, err)
	require.Equal(t, []any{"replaced", "added"}, got.Properties()["category"])
}

func TestApplyReplaceIsTotalAndIdempotent(t *testing.T) {
	ins := instruction(t, `{"action":"update","replace":{"category":["x","y"],"name":["Title"]}}`)
	once, err := Apply(postData(), ins)
	require.NoError(t, err)
	twice, err := Apply(once, ins)
	require.NoError(t, err)

	require.Equal(t, []any{"x", "y"}, once.Properties()["category"])
	require.Equal(t, []any{"Title"}, once.Properties()["name"])
	require.Equal(t, once, twice)
}

func TestApplyNeverStoresEmptySequences(t *testing.T) {
	got, err := Apply(postData(), instruction(t, `{"action":"update","replace":{"category":[]},"add":{"tags":[]}}`))
	require.NoError(t, err)
	require.NotContains(t, got.Properties(), "category")
	require.NotContains(t, got.Properties(), "tags")
}

func TestApplyRejectsNullValues(t *testing.T) {
	for _, body := range []string{
		`{"action":"update","replace":{"content":null}}`,
		`{"action":"update","add":{"category":null}}`,
	} {
		doc := postData()
		got, err := Apply(doc, instruction(t, body))
		require.ErrorIs(t, err, ErrInvalidInstruction, body)
		require.Nil(t, got)
		require.Equal(t, postData().Mf2.Properties, doc.Properties())
	}
}

func TestApplyDeletesStructuredValues(t *testing.T) {
	doc := postData()
	doc.Mf2.Properties["photo"] = []any{
		map[string]any{"value": "https://website.example/a.jpg", "alt": "A"},
		"https://website.example/b.jpg",
	}
	got, err := Apply(doc, instruction(t, `{"action":"update","delete":{"photo":[{"value":"https://website.example/a.jpg","alt":"A"}]}}`))
	require.NoError(t, err)
	require.Equal(t, []any{"https://website.example/b.jpg"}, got.Properties()["photo"])
}
