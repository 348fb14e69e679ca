package main

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/cart"
	"github.com/pavitra93/menulink/shared/resolve"
)

// visitor is one browsing context: a view per resolution shape and a cart
// per tenant. Its context lives until the visitor is evicted.
type visitor struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	menu   *resolve.MenuResolver
	doc    *resolve.DocumentResolver

	mu       sync.Mutex
	carts    map[string]*cart.Persisted
	lastSeen time.Time
}

func (v *visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *visitor) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

func (v *visitor) close() {
	v.cancel()
	v.menu.Close()
	v.doc.Close()
}

// visitorRegistry owns every live browsing context
type visitorRegistry struct {
	client    *backend.Client
	carts     cart.Store
	viewerURL string
	filesURL  string
	timeout   time.Duration
	ttl       time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func newVisitorRegistry(client *backend.Client, carts cart.Store, viewerURL, filesURL string, timeout, ttl time.Duration) *visitorRegistry {
	return &visitorRegistry{
		client:    client,
		carts:     carts,
		viewerURL: viewerURL,
		filesURL:  filesURL,
		timeout:   timeout,
		ttl:       ttl,
		visitors:  make(map[string]*visitor),
		now:       time.Now,
	}
}

// get returns the visitor for id, creating it on first sight
func (r *visitorRegistry) get(id string) *visitor {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[id]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		opts := []resolve.Option{resolve.WithTimeout(r.timeout)}
		v = &visitor{
			id:     id,
			ctx:    ctx,
			cancel: cancel,
			menu:   resolve.NewMenuResolver(r.client, opts...),
			doc:    resolve.NewDocumentResolver(r.client, r.viewerURL, r.filesURL, opts...),
			carts:  make(map[string]*cart.Persisted),
		}
		r.visitors[id] = v
	}
	v.touch(r.now())
	return v
}

// cart returns the visitor's cart for slug, loading it from the store once
func (r *visitorRegistry) cart(ctx context.Context, v *visitor, slug string) (*cart.Persisted, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if c, ok := v.carts[slug]; ok {
		return c, nil
	}
	c, err := cart.Open(ctx, r.carts, v.id, slug)
	if err != nil {
		logrus.WithError(err).WithField("slug", slug).Warn("Failed to load stored cart, starting empty")
		c, err = cart.Open(ctx, cart.NewMemoryStore(), v.id, slug)
		if err != nil {
			return nil, err
		}
	}
	v.carts[slug] = c
	return c, nil
}

// evictIdle closes visitors not seen within the TTL
func (r *visitorRegistry) evictIdle() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []*visitor
	for id, v := range r.visitors {
		if v.idleSince().Before(cutoff) {
			idle = append(idle, v)
			delete(r.visitors, id)
		}
	}
	r.mu.Unlock()

	for _, v := range idle {
		v.close()
	}
	return len(idle)
}

// janitor evicts idle visitors until ctx is done
func (r *visitorRegistry) janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictIdle(); n > 0 {
				logrus.Debugf("Evicted %d idle visitors", n)
			}
		}
	}
}

func (r *visitorRegistry) closeAll() {
	r.mu.Lock()
	visitors := r.visitors
	r.visitors = make(map[string]*visitor)
	r.mu.Unlock()
	for _, v := range visitors {
		v.close()
	}
}

func (r *visitorRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}
