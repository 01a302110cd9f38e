package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

// GitHubConfig configures a GitHub repository used as the content store.
type GitHubConfig struct {
	Token  string
	User   string
	Repo   string
	Branch string
	// BaseURL overrides the API root, e.g. for GitHub Enterprise.
	BaseURL string
}

// GitHubStore commits files through the GitHub contents API.
type GitHubStore struct {
	cfg    GitHubConfig
	client *github.Client
}

func NewGitHubStore(cfg GitHubConfig, httpClient *http.Client) (*GitHubStore, error) {
	if cfg.User == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github store requires user and repo")
	}
	client := github.NewClient(httpClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
		client.BaseURL = base
	}
	return &GitHubStore{cfg: cfg, client: client}, nil
}

func (g *GitHubStore) CreateFile(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error) {
	res, _, err := g.client.Repositories.CreateFile(ctx, g.cfg.User, g.cfg.Repo, cleanPath(path), g.fileOptions(content, "", opts))
	if err != nil {
		return nil, err
	}
	return commitResult(path, res), nil
}

// UpdateFile overwrites path, creating it when it does not exist yet.
func (g *GitHubStore) UpdateFile(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error) {
	current, err := g.stat(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return g.CreateFile(ctx, path, content, opts)
	}
	if err != nil {
		return nil, err
	}
	res, _, err := g.client.Repositories.UpdateFile(ctx, g.cfg.User, g.cfg.Repo, cleanPath(path), g.fileOptions(content, current.GetSHA(), opts))
	if err != nil {
		return nil, err
	}
	return commitResult(path, res), nil
}

func (g *GitHubStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	f, err := g.stat(ctx, path)
	if err != nil {
		return nil, err
	}
	content, err := f.GetContent()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

func (g *GitHubStore) DeleteFile(ctx context.Context, path string, opts Options) (*CommitResult, error) {
	current, err := g.stat(ctx, path)
	if err != nil {
		return nil, err
	}
	res, _, err := g.client.Repositories.DeleteFile(ctx, g.cfg.User, g.cfg.Repo, cleanPath(path), g.fileOptions(nil, current.GetSHA(), opts))
	if err != nil {
		return nil, err
	}
	return commitResult(path, res), nil
}

func (g *GitHubStore) fileOptions(content []byte, sha string, opts Options) *github.RepositoryContentFileOptions {
	o := &github.RepositoryContentFileOptions{
		Message: github.String(opts.Message),
		Content: content,
	}
	if sha != "" {
		o.SHA = github.String(sha)
	}
	if g.cfg.Branch != "" {
		o.Branch = github.String(g.cfg.Branch)
	}
	return o
}

// stat fetches the file's metadata and content. A missing file, or a path
// naming a directory, is ErrNotFound.
func (g *GitHubStore) stat(ctx context.Context, path string) (*github.RepositoryContent, error) {
	var opts *github.RepositoryContentGetOptions
	if g.cfg.Branch != "" {
		opts = &github.RepositoryContentGetOptions{Ref: g.cfg.Branch}
	}
	file, _, _, err := g.client.Repositories.GetContents(ctx, g.cfg.User, g.cfg.Repo, cleanPath(path), opts)
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrNotFound
	}
	return file, nil
}

func commitResult(path string, res *github.RepositoryContentResponse) *CommitResult {
	return &CommitResult{Path: path, Message: res.Commit.GetMessage(), SHA: res.Commit.GetSHA()}
}

func cleanPath(path string) string {
	return strings.Trim(path, "/")
}
