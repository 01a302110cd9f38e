package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	res, err := s.CreateFile(ctx, "bar/foo.txt", []byte("foo"), Options{Message: "Create message"})
	require.NoError(t, err)
	require.Equal(t, "Create message", res.Message)
	require.NotEmpty(t, res.SHA)

	got, err := s.ReadFile(ctx, "bar/foo.txt")
	require.NoError(t, err)
	require.Equal(t, "foo", string(got))

	_, err = s.UpdateFile(ctx, "bar/foo.txt", []byte("bar"), Options{Message: "Update message"})
	require.NoError(t, err)
	_, err = s.DeleteFile(ctx, "bar/foo.txt", Options{Message: "Delete message"})
	require.NoError(t, err)

	_, err = s.ReadFile(ctx, "bar/foo.txt")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteFile(ctx, "bar/foo.txt", Options{})
	require.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, []Commit{
		{Op: "create", Path: "bar/foo.txt", Message: "Create message"},
		{Op: "update", Path: "bar/foo.txt", Message: "Update message"},
		{Op: "delete", Path: "bar/foo.txt", Message: "Delete message"},
	}, s.Commits())
}

// contentsRequest is the body the contents API receives on PUT and DELETE.
type contentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// fakeGitHub serves a tiny subset of the contents API from memory.
type fakeGitHub struct {
	mu    sync.Mutex
	files map[string]string
	auth  []string
	refs  []string
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	if ref := r.URL.Query().Get("ref"); ref != "" {
		f.refs = append(f.refs, ref)
	}
	const prefix = "/repos/user/repo/contents/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, prefix)
	var req contentsRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	switch r.Method {
	case http.MethodGet:
		content, ok := f.files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"type": "file", "path": path, "sha": "sha-" + path, "content": content, "encoding": "base64"})
	case http.MethodPut:
		if _, exists := f.files[path]; exists && req.SHA == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"Invalid request.\n\n\"sha\" wasn't supplied."}`))
			return
		}
		if req.Branch != "" {
			f.refs = append(f.refs, req.Branch)
		}
		f.files[path] = req.Content
		_ = json.NewEncoder(w).Encode(map[string]any{"commit": map[string]string{"sha": "c1", "message": req.Message}})
	case http.MethodDelete:
		delete(f.files, path)
		_ = json.NewEncoder(w).Encode(map[string]any{"commit": map[string]string{"sha": "c2", "message": req.Message}})
	}
}

func TestGitHubStoreCreatesFile(t *testing.T) {
	fake := &fakeGitHub{files: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	gh, err := NewGitHubStore(GitHubConfig{Token: "abc123", User: "user", Repo: "repo", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	res, err := gh.CreateFile(context.Background(), "bar/foo.txt", []byte("foo"), Options{Message: "Create message"})
	require.NoError(t, err)
	require.Equal(t, "Create message", res.Message)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("foo")), fake.files["bar/foo.txt"])
	require.Equal(t, "Bearer abc123", fake.auth[0])
}

func TestGitHubStoreUpdateReadDelete(t *testing.T) {
	fake := &fakeGitHub{files: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	gh, err := NewGitHubStore(GitHubConfig{User: "user", Repo: "repo", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = gh.CreateFile(ctx, "foo.md", []byte("one"), Options{Message: "create"})
	require.NoError(t, err)
	_, err = gh.CreateFile(ctx, "foo.md", []byte("two"), Options{Message: "create again"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "sha")

	_, err = gh.UpdateFile(ctx, "foo.md", []byte("two"), Options{Message: "update"})
	require.NoError(t, err)
	got, err := gh.ReadFile(ctx, "foo.md")
	require.NoError(t, err)
	require.Equal(t, "two", string(got))

	res, err := gh.DeleteFile(ctx, "foo.md", Options{Message: "delete"})
	require.NoError(t, err)
	require.Equal(t, "delete", res.Message)

	_, err = gh.ReadFile(ctx, "foo.md")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubStorePassesTransportErrorsThrough(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gh, err := NewGitHubStore(GitHubConfig{User: "user", Repo: "repo", BaseURL: url}, nil)
	require.NoError(t, err)
	_, err = gh.CreateFile(context.Background(), "bar/foo.txt", []byte("foo"), Options{Message: "Create message"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connect")
}

func TestGitHubStoreCommitsToBranch(t *testing.T) {
	fake := &fakeGitHub{files: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	gh, err := NewGitHubStore(GitHubConfig{User: "user", Repo: "repo", Branch: "drafts", BaseURL: srv.URL + "/"}, srv.Client())
	require.NoError(t, err)
	ctx := context.Background()

	// update of a missing file creates it
	res, err := gh.UpdateFile(ctx, "/notes/a.md", []byte("a"), Options{Message: "update"})
	require.NoError(t, err)
	require.Equal(t, "c1", res.SHA)
	require.Equal(t, "/notes/a.md", res.Path)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("a")), fake.files["notes/a.md"])
	require.NotEmpty(t, fake.refs)
	for _, ref := range fake.refs {
		require.Equal(t, "drafts", ref)
	}

	_, err = gh.DeleteFile(ctx, "notes/missing.md", Options{Message: "delete"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewGitHubStoreValidates(t *testing.T) {
	_, err := NewGitHubStore(GitHubConfig{User: "user"}, nil)
	require.Error(t, err)
}

func setupFakeS3(t *testing.T) (*httptest.Server, *MinIOConfig) {
	t.Helper()
	fs := gofakes3.New(s3mem.New())
	server := httptest.NewServer(fs.Server())
	return server, &MinIOConfig{
		Endpoint:  strings.TrimPrefix(server.URL, "http://"),
		AccessKey: "test",
		SecretKey: "test",
		Region:    "us-east-1",
		Bucket:    "micropub-test",
		Prefix:    "site",
	}
}

func TestMinIOStoreLifecycle(t *testing.T) {
	server, cfg := setupFakeS3(t)
	defer server.Close()

	s, err := NewMinIOStore(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := s.CreateFile(ctx, "_notes/foo.md", []byte("hello"), Options{Message: "note: create post"})
	require.NoError(t, err)
	require.Equal(t, "note: create post", res.Message)

	got, err := s.ReadFile(ctx, "_notes/foo.md")
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	_, err = s.UpdateFile(ctx, "_notes/foo.md", []byte("hello moon"), Options{Message: "note: update post"})
	require.NoError(t, err)
	got, err = s.ReadFile(ctx, "_notes/foo.md")
	require.NoError(t, err)
	require.Equal(t, "hello moon", string(got))

	_, err = s.DeleteFile(ctx, "_notes/foo.md", Options{Message: "note: delete post"})
	require.NoError(t, err)
	_, err = s.ReadFile(ctx, "_notes/foo.md")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteFile(ctx, "_notes/foo.md", Options{})
	require.ErrorIs(t, err, ErrNotFound)

	// a second store against the same bucket reuses it
	_, err = NewMinIOStore(cfg)
	require.NoError(t, err)
}

func TestNewMinIOStoreRequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStore(&MinIOConfig{})
	require.Error(t, err)
	_, err = NewMinIOStore(nil)
	require.Error(t, err)
}
