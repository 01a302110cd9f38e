package micropub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkpub/micropub/internal/history"
	"github.com/inkpub/micropub/internal/mf2"
	"github.com/inkpub/micropub/internal/post"
	"github.com/inkpub/micropub/internal/post/repository"
	"github.com/inkpub/micropub/internal/publication"
	"github.com/inkpub/micropub/internal/render"
	"github.com/inkpub/micropub/internal/store"
	"github.com/inkpub/micropub/pkg/logger"
)

// Service runs Micropub actions: it reads post records, applies the
// requested change, commits the rendered file and records history.
// Updates to the same URL must be serialized by the caller.
type Service struct {
	cfg     *publication.Config
	store   store.Store
	posts   repository.Repository
	history history.Recorder
	now     func() time.Time
}

func NewService(cfg *publication.Config, st store.Store, posts repository.Repository, rec history.Recorder) *Service {
	if rec == nil {
		rec = history.Noop{}
	}
	return &Service{cfg: cfg, store: st, posts: posts, history: rec, now: time.Now}
}

func commitMessage(postType, action string) store.Options {
	return store.Options{Message: fmt.Sprintf("%s: %s", postType, action)}
}

// Lookup returns the live document at url, or nil when there is none.
// It satisfies mf2.LookupFunc.
func (s *Service) Lookup(ctx context.Context, url string) (*mf2.Document, error) {
	p, err := s.posts.Get(ctx, url)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Deleted {
		return nil, nil
	}
	return &p.Document, nil
}

// Create publishes a new post built from item.
func (s *Service) Create(ctx context.Context, item *mf2.Item) (*mf2.Document, error) {
	doc, err := NewDocument(item, s.cfg, s.now())
	if err != nil {
		return nil, err
	}
	existing, err := s.Lookup(ctx, doc.URL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, InvalidRequest("a post already exists at %s", doc.URL)
	}

	content, err := render.Post(doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.CreateFile(ctx, doc.Path, content, commitMessage(doc.Type, "create post")); err != nil {
		return nil, err
	}
	if err := s.posts.Save(ctx, &post.Post{Document: *doc}); err != nil {
		return nil, err
	}
	s.record(ctx, "create", doc)
	logger.Infof("created %s at %s", doc.Type, doc.URL)
	return doc, nil
}

// Update applies ins to the post at ins.URL and commits the result.
func (s *Service) Update(ctx context.Context, ins *Instruction) (*mf2.Document, error) {
	if ins == nil {
		return nil, newError(ErrInvalidInstruction, "missing update instruction")
	}
	if ins.URL == "" {
		return nil, InvalidRequest("missing url")
	}
	current, err := s.Lookup(ctx, ins.URL)
	if err != nil {
		return nil, err
	}
	updated, err := Apply(current, ins)
	if err != nil {
		return nil, err
	}

	content, err := render.Post(updated)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateFile(ctx, updated.Path, content, commitMessage(updated.Type, "update post")); err != nil {
		return nil, err
	}
	if err := s.posts.Save(ctx, &post.Post{Document: *updated}); err != nil {
		return nil, err
	}
	s.record(ctx, "update", updated)
	logger.Infof("updated %s", updated.URL)
	return updated, nil
}

// Delete removes the post file and marks the record deleted so it can be
// restored later.
func (s *Service) Delete(ctx context.Context, url string) (*mf2.Document, error) {
	if url == "" {
		return nil, InvalidRequest("missing url")
	}
	p, err := s.posts.Get(ctx, url)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && p.Deleted) {
		return nil, newError(ErrInvalidTarget, "no post found to delete")
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.store.DeleteFile(ctx, p.Path, commitMessage(p.Type, "delete post")); err != nil {
		return nil, err
	}
	p.Deleted = true
	if err := s.posts.Save(ctx, p); err != nil {
		return nil, err
	}
	s.record(ctx, "delete", &p.Document)
	logger.Infof("deleted %s", url)
	return &p.Document, nil
}

// Undelete restores a deleted post from its stored record.
func (s *Service) Undelete(ctx context.Context, url string) (*mf2.Document, error) {
	if url == "" {
		return nil, InvalidRequest("missing url")
	}
	p, err := s.posts.Get(ctx, url)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrInvalidTarget, "no post found to undelete")
	}
	if err != nil {
		return nil, err
	}
	if !p.Deleted {
		return nil, InvalidRequest("post at %s is not deleted", url)
	}
	doc, err := Undelete(ctx, &p.Document, s.store)
	if err != nil {
		return nil, err
	}
	p.Deleted = false
	if err := s.posts.Save(ctx, p); err != nil {
		return nil, err
	}
	s.record(ctx, "undelete", doc)
	logger.Infof("undeleted %s", url)
	return doc, nil
}

// Undelete writes doc back to its original path. Store errors are
// returned as they are. On success doc itself is returned.
func Undelete(ctx context.Context, doc *mf2.Document, st store.Store) (*mf2.Document, error) {
	if doc == nil {
		return nil, newError(ErrInvalidTarget, "no post found to undelete")
	}
	content, err := render.Post(doc)
	if err != nil {
		return nil, err
	}
	if _, err := st.CreateFile(ctx, doc.Path, content, commitMessage(doc.Type, "undelete post")); err != nil {
		return nil, err
	}
	return doc, nil
}

// history failures are logged; the commit already happened
func (s *Service) record(ctx context.Context, action string, doc *mf2.Document) {
	if err := s.history.Record(ctx, action, doc); err != nil {
		logger.Warnf("history: %v", err)
	}
}
