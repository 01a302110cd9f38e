package media

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisRepository implements Repository using Redis as the backing store.
// Records are stored as JSON under key "<prefix><url>"; "<prefix>last"
// holds the URL of the latest upload.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based media repository. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "media:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(url string) string {
	return r.prefix + "item:" + url
}

func (r *RedisRepository) lastKey() string {
	return r.prefix + "last"
}

func (r *RedisRepository) Save(ctx context.Context, m *Media) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key(m.URL), b, 0)
		p.Set(ctx, r.lastKey(), m.URL, 0)
		return nil
	})
	return err
}

func (r *RedisRepository) Get(ctx context.Context, url string) (*Media, error) {
	b, err := r.client.Get(ctx, r.key(url)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var m Media
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *RedisRepository) Last(ctx context.Context) (*Media, error) {
	url, err := r.client.Get(ctx, r.lastKey()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.Get(ctx, url)
}
