package publication

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SyndicationTarget is an external service a post may be syndicated to.
type SyndicationTarget struct {
	UID  string `json:"uid" mapstructure:"uid"`
	Name string `json:"name" mapstructure:"name"`
}

// PathTemplates are the storage path and public URL templates of a post
// type. Templates may use {yyyy}, {MM}, {dd}, {slug}, {basename} and {ext}.
type PathTemplates struct {
	Post  string `json:"post,omitempty" mapstructure:"post"`
	Media string `json:"media,omitempty" mapstructure:"media"`
	URL   string `json:"url,omitempty" mapstructure:"url"`
}

// PostType is one entry of the configured post-type vocabulary.
type PostType struct {
	Type string        `json:"type" mapstructure:"type"`
	Name string        `json:"name" mapstructure:"name"`
	Icon string        `json:"icon,omitempty" mapstructure:"icon"`
	Path PathTemplates `json:"path,omitempty" mapstructure:"path"`
}

// Config is the read-only publication configuration handed to the query
// dispatcher and the action layer.
type Config struct {
	Me            string              `mapstructure:"me"`
	MediaEndpoint string              `mapstructure:"media-endpoint"`
	SyndicateTo   []SyndicationTarget `mapstructure:"syndicate-to"`
	PostTypes     []PostType          `mapstructure:"post-types"`
	Categories    []string            `mapstructure:"categories"`
}

// PostTypeConfig returns the configuration of the named post type.
func (c *Config) PostTypeConfig(postType string) (PostType, bool) {
	if c == nil {
		return PostType{}, false
	}
	for _, pt := range c.PostTypes {
		if pt.Type == postType {
			return pt, true
		}
	}
	return PostType{}, false
}

// MergePostTypes overlays configured post types on the defaults. Types
// present in both keep their default position and take every non-empty
// configured field; types only in configured are appended in order.
func MergePostTypes(defaults, configured []PostType) []PostType {
	out := make([]PostType, 0, len(defaults)+len(configured))
	index := map[string]int{}
	for _, pt := range defaults {
		index[pt.Type] = len(out)
		out = append(out, pt)
	}
	for _, pt := range configured {
		i, ok := index[pt.Type]
		if !ok {
			index[pt.Type] = len(out)
			out = append(out, pt)
			continue
		}
		out[i] = overlay(out[i], pt)
	}
	return out
}

func overlay(base, over PostType) PostType {
	if over.Name != "" {
		base.Name = over.Name
	}
	if over.Icon != "" {
		base.Icon = over.Icon
	}
	if over.Path.Post != "" {
		base.Path.Post = over.Path.Post
	}
	if over.Path.Media != "" {
		base.Path.Media = over.Path.Media
	}
	if over.Path.URL != "" {
		base.Path.URL = over.Path.URL
	}
	return base
}

// New returns a configuration for the site at me using the default post
// types.
func New(me string) *Config {
	return &Config{Me: strings.TrimRight(me, "/"), PostTypes: DefaultPostTypes()}
}

// LoadFile reads a YAML or JSON publication configuration and merges its
// post types over the defaults. An empty path yields the defaults.
func LoadFile(path, me string) (*Config, error) {
	cfg := New(me)
	if path == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read publication config: %w", err)
	}
	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return nil, fmt.Errorf("decode publication config: %w", err)
	}
	if loaded.Me != "" {
		cfg.Me = strings.TrimRight(loaded.Me, "/")
	}
	cfg.MediaEndpoint = loaded.MediaEndpoint
	cfg.SyndicateTo = loaded.SyndicateTo
	cfg.Categories = loaded.Categories
	cfg.PostTypes = MergePostTypes(cfg.PostTypes, loaded.PostTypes)
	return cfg, nil
}
