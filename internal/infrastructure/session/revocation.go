package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/paintball-league/internal/platform/cache"
)

// RevocationStore remembers revoked token ids until the token would have
// expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

func revocationKey(tokenID string) string { return "session:revoked:" + tokenID }

// MemoryRevocationStore only covers a single process.
type MemoryRevocationStore struct {
	store *cache.Store
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{store: cache.NewStore(0)}
}

func (s *MemoryRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.store.Prune(ctx)
	s.store.SetWithTTL(ctx, revocationKey(tokenID), struct{}{}, ttl)
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.store.Has(ctx, revocationKey(tokenID)), nil
}

type RedisRevocationStore struct {
	client redis.UniversalClient
}

func NewRedisRevocationStore(client redis.UniversalClient) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, revocationKey(tokenID), "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
