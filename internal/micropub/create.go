package micropub

import (
	"strings"
	"time"
	"unicode"

	"github.com/inkpub/micropub/internal/mf2"
	"github.com/inkpub/micropub/internal/publication"
	"github.com/rs/xid"
)

const slugWords = 5

// DiscoverType derives the post type of item from its vocabulary and
// properties. Responses and interactions win over media, media wins over
// text.
func DiscoverType(item *mf2.Item) string {
	if item == nil {
		return "note"
	}
	for _, t := range item.Type {
		if t == "h-event" {
			return "event"
		}
	}
	props := item.Properties
	has := func(name string) bool {
		_, ok := props.First(name)
		return ok
	}
	switch {
	case has("rsvp"):
		return "rsvp"
	case has("repost-of"):
		return "repost"
	case has("like-of"):
		return "like"
	case has("in-reply-to"):
		return "reply"
	case has("bookmark-of"):
		return "bookmark"
	case has("video"):
		return "video"
	case has("audio"):
		return "audio"
	case has("photo"):
		return "photo"
	}
	name := strings.TrimSpace(props.FirstString("name"))
	if name == "" {
		return "note"
	}
	content := contentText(props)
	if strings.HasPrefix(collapseSpace(content), collapseSpace(name)) {
		return "note"
	}
	return "article"
}

// Slug picks the path slug of a new post: mp-slug, then the name, then the
// first words of the content, then a random id.
func Slug(props mf2.Properties) string {
	if s := slugify(props.FirstString("mp-slug")); s != "" {
		return s
	}
	if s := slugify(props.FirstString("name")); s != "" {
		return s
	}
	words := strings.Fields(contentText(props))
	if len(words) > slugWords {
		words = words[:slugWords]
	}
	if s := slugify(strings.Join(words, " ")); s != "" {
		return s
	}
	return xid.New().String()
}

// ExpandTemplate fills the {yyyy}, {MM}, {dd} placeholders from t and any
// other {name} placeholder from vars.
func ExpandTemplate(tpl string, t time.Time, vars map[string]string) string {
	pairs := []string{
		"{yyyy}", t.Format("2006"),
		"{MM}", t.Format("01"),
		"{dd}", t.Format("02"),
	}
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// NewDocument builds the document for a create request. The item is not
// modified. published defaults to now, and mp-* commands are consumed.
func NewDocument(item *mf2.Item, cfg *publication.Config, now time.Time) (*mf2.Document, error) {
	if item == nil || len(item.Properties) == 0 {
		return nil, InvalidRequest("no properties to create a post from")
	}
	it := item.Clone()
	if len(it.Type) == 0 {
		it.Type = []string{"h-entry"}
	}

	published := now
	if p := it.Properties.FirstString("published"); p != "" {
		if t, err := time.Parse(time.RFC3339, p); err == nil {
			published = t
		}
	} else {
		it.Properties.Set("published", []any{now.Format(time.RFC3339)})
	}

	postType := DiscoverType(it)
	ptc, ok := cfg.PostTypeConfig(postType)
	if !ok || ptc.Path.Post == "" {
		return nil, InvalidRequest("no configuration for post type %q", postType)
	}

	vars := map[string]string{"slug": Slug(it.Properties)}
	for _, name := range it.Properties.Names() {
		if strings.HasPrefix(name, "mp-") {
			delete(it.Properties, name)
		}
	}

	return &mf2.Document{
		Type: postType,
		Path: ExpandTemplate(ptc.Path.Post, published, vars),
		URL:  strings.TrimRight(cfg.Me, "/") + "/" + strings.TrimLeft(ExpandTemplate(ptc.Path.URL, published, vars), "/"),
		Mf2:  it,
	}, nil
}

func contentText(props mf2.Properties) string {
	v, ok := props.First("content")
	if !ok {
		return ""
	}
	switch c := v.(type) {
	case string:
		return c
	case map[string]any:
		s, _ := c["value"].(string)
		return s
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
