package micropub

import (
	"context"
	"net/http"
	"strings"

	"github.com/inkpub/micropub/internal/mf2"
	"github.com/inkpub/micropub/internal/publication"
)

// Supported query types.
const (
	QueryConfig      = "config"
	QuerySource      = "source"
	QuerySyndicateTo = "syndicate-to"
)

// Query is a Micropub GET request.
type Query struct {
	Q          string
	URL        string
	Properties []string
}

// Response is a successful query answer.
type Response struct {
	Status int
	Body   any
}

// ConfigBody answers q=config.
type ConfigBody struct {
	MediaEndpoint string                          `json:"media-endpoint"`
	SyndicateTo   []publication.SyndicationTarget `json:"syndicate-to"`
	PostTypes     []PostTypeSummary               `json:"post-types,omitempty"`
	Q             []string                        `json:"q"`
}

// SyndicateToBody answers q=syndicate-to.
type SyndicateToBody struct {
	SyndicateTo []publication.SyndicationTarget `json:"syndicate-to"`
}

// PostTypeSummary lists a post type in q=config.
type PostTypeSummary struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// AnswerQuery maps a query to its response. Unknown query types yield an
// invalid_request *Error. Resolver errors for q=source are returned as is.
func AnswerQuery(ctx context.Context, q Query, cfg *publication.Config, appURL string, resolver mf2.Resolver) (*Response, error) {
	if cfg == nil {
		cfg = &publication.Config{}
	}
	mediaEndpoint := cfg.MediaEndpoint
	if mediaEndpoint == "" {
		mediaEndpoint = strings.TrimRight(appURL, "/") + "/media"
	}
	syndicateTo := cfg.SyndicateTo
	if syndicateTo == nil {
		syndicateTo = []publication.SyndicationTarget{}
	}

	switch q.Q {
	case QueryConfig:
		body := ConfigBody{
			MediaEndpoint: mediaEndpoint,
			SyndicateTo:   syndicateTo,
			Q:             []string{QueryConfig, QuerySource, QuerySyndicateTo},
		}
		for _, pt := range cfg.PostTypes {
			body.PostTypes = append(body.PostTypes, PostTypeSummary{Type: pt.Type, Name: pt.Name})
		}
		return &Response{Status: http.StatusOK, Body: body}, nil
	case QuerySource:
		if q.URL == "" {
			return nil, InvalidRequest("source query requires a url")
		}
		if resolver == nil {
			return nil, InvalidRequest("source queries are not supported")
		}
		item, err := resolver.Resolve(ctx, q.URL, q.Properties)
		if err != nil {
			return nil, err
		}
		return &Response{Status: http.StatusOK, Body: item}, nil
	case QuerySyndicateTo:
		return &Response{Status: http.StatusOK, Body: SyndicateToBody{SyndicateTo: syndicateTo}}, nil
	}
	return nil, InvalidRequest("unsupported query %q", q.Q)
}
