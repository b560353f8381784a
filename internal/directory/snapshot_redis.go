package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slammedialab/vercel-siteid/pkg/platform/sentinel"
)

const defaultSnapshotKey = "siteid:directory:snapshot"

// RedisSnapshots keeps the latest generation under one key with the cache
// TTL as expiry, so a cold instance can skip the export download.
type RedisSnapshots struct {
	client *redis.Client
	key    string
}

// RedisSnapshotOption configures RedisSnapshots.
type RedisSnapshotOption func(*RedisSnapshots)

// WithSnapshotKey overrides the storage key.
func WithSnapshotKey(key string) RedisSnapshotOption {
	return func(s *RedisSnapshots) {
		if key != "" {
			s.key = key
		}
	}
}

func NewRedisSnapshots(client *redis.Client, opts ...RedisSnapshotOption) *RedisSnapshots {
	s := &RedisSnapshots{client: client, key: defaultSnapshotKey}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type snapshotPayload struct {
	BuiltAt time.Time `json:"builtAt"`
	Entries []Entry   `json:"entries"`
}

func (s *RedisSnapshots) Load(ctx context.Context) (*Directory, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load directory snapshot: %w", err)
	}
	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode directory snapshot: %w", err)
	}
	return New(payload.Entries, payload.BuiltAt), nil
}

func (s *RedisSnapshots) Save(ctx context.Context, d *Directory, ttl time.Duration) error {
	raw, err := json.Marshal(snapshotPayload{BuiltAt: d.BuiltAt(), Entries: d.Entries()})
	if err != nil {
		return fmt.Errorf("encode directory snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save directory snapshot: %w", err)
	}
	return nil
}
