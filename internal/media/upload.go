package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/inkpub/micropub/internal/history"
	"github.com/inkpub/micropub/internal/micropub"
	"github.com/inkpub/micropub/internal/publication"
	"github.com/inkpub/micropub/internal/store"
	"github.com/inkpub/micropub/pkg/logger"
)

// DefaultMaxUpload is used when no limit is configured.
const DefaultMaxUpload = "10MB"

// Uploader commits uploaded files to the content store.
type Uploader struct {
	cfg      *publication.Config
	store    store.Store
	repo     Repository
	history  history.Recorder
	maxBytes uint64
	now      func() time.Time
}

// NewUploader parses maxUpload with go-humanize ("10MB", "512 KiB").
func NewUploader(cfg *publication.Config, st store.Store, repo Repository, rec history.Recorder, maxUpload string) (*Uploader, error) {
	if maxUpload == "" {
		maxUpload = DefaultMaxUpload
	}
	limit, err := humanize.ParseBytes(maxUpload)
	if err != nil {
		return nil, fmt.Errorf("parse upload limit %q: %w", maxUpload, err)
	}
	if rec == nil {
		rec = history.Noop{}
	}
	return &Uploader{cfg: cfg, store: st, repo: repo, history: rec, maxBytes: limit, now: time.Now}, nil
}

// MaxBytes is the upload limit in bytes.
func (u *Uploader) MaxBytes() uint64 { return u.maxBytes }

// TypeFor maps a MIME type to the post type its file belongs to.
func TypeFor(contentType string) (string, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return "photo", true
	case strings.HasPrefix(mt, "video/"):
		return "video", true
	case strings.HasPrefix(mt, "audio/"):
		return "audio", true
	}
	return "", false
}

// Upload stores the file read from r and records it.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*Media, error) {
	postType, ok := TypeFor(contentType)
	if !ok {
		return nil, micropub.InvalidRequest("unsupported media type %q", contentType)
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(u.maxBytes)+1))
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) > u.maxBytes {
		return nil, micropub.InvalidRequest("file is larger than the %s upload limit", humanize.Bytes(u.maxBytes))
	}
	if len(data) == 0 {
		return nil, micropub.InvalidRequest("file is empty")
	}

	ptc, ok := u.cfg.PostTypeConfig(postType)
	if !ok || ptc.Path.Media == "" {
		return nil, micropub.InvalidRequest("no media path configured for post type %q", postType)
	}
	now := u.now()
	path := micropub.ExpandTemplate(ptc.Path.Media, now, map[string]string{
		"basename": uuid.NewString(),
		"ext":      extension(filename, contentType),
	})
	m := &Media{
		Type:        postType,
		Path:        path,
		URL:         strings.TrimRight(u.cfg.Me, "/") + "/" + path,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  now,
	}

	if _, err := u.store.CreateFile(ctx, m.Path, data, store.Options{Message: postType + ": upload media"}); err != nil {
		return nil, err
	}
	m.LastAction = "upload"
	if err := u.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	if err := u.history.Record(ctx, "upload", m); err != nil {
		logger.Warnf("history: %v", err)
	}
	logger.Infof("uploaded %s (%s) to %s", filename, humanize.Bytes(uint64(m.Size)), m.URL)
	return m, nil
}

// Last returns the latest upload.
func (u *Uploader) Last(ctx context.Context) (*Media, error) {
	return u.repo.Last(ctx)
}

func extension(filename, contentType string) string {
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
