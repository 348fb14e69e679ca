package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store persists cart snapshots per visitor and tenant
type Store interface {
	Load(ctx context.Context, visitorID, slug string) (Snapshot, bool, error)
	Save(ctx context.Context, visitorID string, snapshot Snapshot) error
	Delete(ctx context.Context, visitorID, slug string) error
}

func storeKey(visitorID, slug string) string {
	return fmt.Sprintf("cart:%s:%s", visitorID, slug)
}

// RedisStore keeps snapshots as JSON with a sliding TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed cart store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, visitorID, slug string) (Snapshot, bool, error) {
	data, err := s.client.Get(ctx, storeKey(visitorID, slug)).Result()
	if errors.Is(err, redis.Nil) {
		return Snapshot{Slug: slug}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to load cart: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to decode cart: %w", err)
	}
	return snapshot, true, nil
}

// Save writes the snapshot; an empty cart deletes the key
func (s *RedisStore) Save(ctx context.Context, visitorID string, snapshot Snapshot) error {
	if snapshot.Empty() {
		return s.Delete(ctx, visitorID, snapshot.Slug)
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, storeKey(visitorID, snapshot.Slug), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, visitorID, slug string) error {
	if err := s.client.Del(ctx, storeKey(visitorID, slug)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// MemoryStore is used when Redis is unavailable. Contents are lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]Snapshot)}
}

func (s *MemoryStore) Load(_ context.Context, visitorID, slug string) (Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[storeKey(visitorID, slug)]
	if !ok {
		return Snapshot{Slug: slug}, false, nil
	}
	return snapshot, true, nil
}

func (s *MemoryStore) Save(_ context.Context, visitorID string, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(visitorID, snapshot.Slug)
	if snapshot.Empty() {
		delete(s.snapshots, key)
		return nil
	}
	s.snapshots[key] = snapshot
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, visitorID, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, storeKey(visitorID, slug))
	return nil
}

// Persisted couples a cart with write-through storage. Mutations and their
// writes are serialised so the stored snapshot never runs behind.
type Persisted struct {
	mu        sync.Mutex
	cart      *Cart
	store     Store
	visitorID string
}

// Open loads the visitor's cart for slug, or starts an empty one
func Open(ctx context.Context, store Store, visitorID, slug string) (*Persisted, error) {
	snapshot, found, err := store.Load(ctx, visitorID, slug)
	if err != nil {
		return nil, err
	}
	c := New(slug)
	if found {
		snapshot.Slug = slug
		c = FromSnapshot(snapshot)
	}
	return &Persisted{cart: c, store: store, visitorID: visitorID}, nil
}

// Cart exposes the underlying cart for reads
func (p *Persisted) Cart() *Cart {
	return p.cart
}

// Apply runs fn against the cart and writes the result through
func (p *Persisted) Apply(ctx context.Context, fn func(c *Cart)) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.cart)
	snapshot := p.cart.Snapshot()
	if err := p.store.Save(ctx, p.visitorID, snapshot); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// Drain runs fn against the cart and clears it when fn reports the contents
// were taken. No other mutation runs between fn and the clear.
func (p *Persisted) Drain(ctx context.Context, fn func(c *Cart) bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	taken := fn(p.cart)
	if taken {
		p.cart.Clear()
	}
	if err := p.store.Save(ctx, p.visitorID, p.cart.Snapshot()); err != nil {
		return taken, err
	}
	return taken, nil
}
