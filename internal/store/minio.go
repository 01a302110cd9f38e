package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const commitMessageKey = "Commit-Message"

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	Prefix    string
}

// MinIOStore keeps files as objects in a bucket. The commit message of
// the last write is kept in the object's user metadata.
type MinIOStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIOStore creates a new MinIO client and ensures the bucket exists.
func NewMinIOStore(cfg *MinIOConfig) (*MinIOStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStore{client: mc, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func (s *MinIOStore) key(path string) string {
	path = strings.TrimLeft(path, "/")
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *MinIOStore) CreateFile(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error) {
	return s.put(ctx, path, content, opts)
}

func (s *MinIOStore) UpdateFile(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error) {
	return s.put(ctx, path, content, opts)
}

func (s *MinIOStore) put(ctx context.Context, path string, content []byte, opts Options) (*CommitResult, error) {
	info, err := s.client.PutObject(ctx, s.bucket, s.key(path), bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:  http.DetectContentType(content),
		UserMetadata: map[string]string{commitMessageKey: opts.Message},
	})
	if err != nil {
		return nil, err
	}
	return &CommitResult{Path: path, Message: opts.Message, SHA: info.ETag}, nil
}

func (s *MinIOStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	// stat first so a missing key surfaces as ErrNotFound
	if _, err := obj.Stat(); err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return io.ReadAll(obj)
}

func (s *MinIOStore) DeleteFile(ctx context.Context, path string, opts Options) (*CommitResult, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, s.key(path), minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, s.key(path), minio.RemoveObjectOptions{}); err != nil {
		return nil, err
	}
	return &CommitResult{Path: path, Message: opts.Message}, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
