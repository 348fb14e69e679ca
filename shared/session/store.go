package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pavitra93/menulink/shared/models"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis under session:{token hash}
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.TokenSession, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var ts models.TokenSession
	if err := json.Unmarshal([]byte(data), &ts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &ts, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, ts *models.TokenSession, ttl time.Duration) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

// MemoryStore is the single-instance fallback when Redis is down
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.TokenSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.TokenSession)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.TokenSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &ts, nil
}

// Put ignores ttl; expiry is enforced by Manager through ExpiresAt
func (s *MemoryStore) Put(_ context.Context, key string, ts *models.TokenSession, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = *ts
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}
