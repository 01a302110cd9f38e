package publication

// DefaultPostTypes returns the built-in post types, laid out the way a
// Jekyll site stores them.
func DefaultPostTypes() []PostType {
	return []PostType{
		jekyll("article", "Article", "_posts/{yyyy}-{MM}-{dd}-{slug}.md", "{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("note", "Note", "_notes/{yyyy}-{MM}-{dd}-{slug}.md", "notes/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("photo", "Photo", "_photos/{yyyy}-{MM}-{dd}-{slug}.md", "photos/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("video", "Video", "_videos/{yyyy}-{MM}-{dd}-{slug}.md", "videos/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("audio", "Audio", "_audio/{yyyy}-{MM}-{dd}-{slug}.md", "audio/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("bookmark", "Bookmark", "_bookmarks/{yyyy}-{MM}-{dd}-{slug}.md", "bookmarks/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("like", "Like", "_likes/{yyyy}-{MM}-{dd}-{slug}.md", "likes/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("reply", "Reply", "_replies/{yyyy}-{MM}-{dd}-{slug}.md", "replies/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("repost", "Repost", "_reposts/{yyyy}-{MM}-{dd}-{slug}.md", "reposts/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("rsvp", "RSVP", "_rsvps/{yyyy}-{MM}-{dd}-{slug}.md", "rsvps/{yyyy}/{MM}/{dd}/{slug}"),
		jekyll("event", "Event", "_events/{yyyy}-{MM}-{dd}-{slug}.md", "events/{yyyy}/{MM}/{dd}/{slug}"),
	}
}

func jekyll(postType, name, post, url string) PostType {
	return PostType{
		Type: postType,
		Name: name,
		Path: PathTemplates{
			Post:  post,
			Media: "media/{yyyy}/{MM}/{dd}/{basename}.{ext}",
			URL:   url,
		},
	}
}
