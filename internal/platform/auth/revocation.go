package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// RevocationStore records logged-out token IDs until the token would have
// expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocationStore keeps revocations in process memory. Expired
// entries are pruned on write; it is meant for single-instance deployments
// without REDIS_URL.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.entries {
		if !exp.After(now) {
			delete(s.entries, id)
		}
	}
	if expiresAt.After(now) {
		s.entries[jti] = expiresAt
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.entries[jti]
	return ok && exp.After(s.now()), nil
}

// Len returns the number of tracked revocations.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

const revokedKeyPrefix = "revoked_token:"

// RedisRevocationStore keeps revocations in redis with a TTL equal to the
// token's remaining lifetime. Calls go through a circuit breaker.
type RedisRevocationStore struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
	now    func() time.Time
}

func NewRedisRevocationStore(client *redis.Client, cb *gobreaker.CircuitBreaker) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, cb: cb, now: time.Now}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return false, err
		}
		return n > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return res.(bool), nil
}
