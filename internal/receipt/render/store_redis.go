package render

import (
	"context"
	"fmt"
	"strings"

	platformredis "aidtrack/internal/platform/redis"
)

const redisKeyPrefix = "receipt:document:"

// RedisDocumentStore keeps rendered documents as Redis string values. The
// returned location is the Redis key, prefixed so it is distinguishable from
// a file path.
type RedisDocumentStore struct {
	client *platformredis.Client
}

func NewRedisDocumentStore(client *platformredis.Client) *RedisDocumentStore {
	return &RedisDocumentStore{client: client}
}

func (s *RedisDocumentStore) Put(ctx context.Context, name string, content []byte) (string, error) {
	key := redisKeyPrefix + sanitizeName(name)
	if err := s.client.Set(ctx, key, content, 0).Err(); err != nil {
		return "", fmt.Errorf("store document in redis: %w", err)
	}
	return key, nil
}

func (s *RedisDocumentStore) Get(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, redisKeyPrefix) {
		return nil, fmt.Errorf("not a redis document location: %s", location)
	}
	content, err := s.client.Get(ctx, location).Bytes()
	if err != nil {
		return nil, fmt.Errorf("fetch document from redis: %w", err)
	}
	return content, nil
}
