// Package render turns a post document into the file committed to the
// content store: YAML frontmatter followed by a markdown body.
package render

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/inkpub/micropub/internal/mf2"
	"gopkg.in/yaml.v3"
)

// frontmatter keys renamed for static site generators
var renamed = map[string]string{
	"name":      "title",
	"published": "date",
}

// always rendered as lists, even with one value
var listProperties = map[string]bool{
	"category":    true,
	"syndication": true,
	"photo":       true,
	"video":       true,
	"audio":       true,
}

// Post renders doc. Properties prefixed with mp- are server commands and
// are never written.
func Post(doc *mf2.Document) ([]byte, error) {
	props := doc.Properties()
	if props == nil {
		return nil, fmt.Errorf("document %q has no properties", doc.URL)
	}

	meta := map[string]any{}
	for _, name := range props.Names() {
		if name == "content" || strings.HasPrefix(name, "mp-") {
			continue
		}
		key := name
		if r, ok := renamed[name]; ok {
			key = r
		}
		values := props[name]
		if len(values) == 1 && !listProperties[name] {
			meta[key] = values[0]
		} else {
			meta[key] = values
		}
	}

	body, err := Content(props)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	if len(meta) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(meta); err != nil {
			return nil, fmt.Errorf("encode frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Content returns the markdown body for the content property. Plain text
// is used as is; an {html, value} object prefers converting the HTML.
func Content(props mf2.Properties) (string, error) {
	v, ok := props.First("content")
	if !ok {
		return "", nil
	}
	switch c := v.(type) {
	case string:
		return c, nil
	case map[string]any:
		if h, ok := c["html"].(string); ok && h != "" {
			md, err := htmltomarkdown.ConvertString(h)
			if err != nil {
				return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
			}
			return strings.TrimSpace(md), nil
		}
		if text, ok := c["value"].(string); ok {
			return text, nil
		}
	}
	return "", nil
}
