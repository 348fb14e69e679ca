package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/cart"
	"github.com/pavitra93/menulink/shared/models"
)

func TestVisitorRegistryEvictsIdle(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	r := newVisitorRegistry(backend.NewClient("http://127.0.0.1:1", nil), cart.NewMemoryStore(), "", "", time.Second, time.Hour)
	r.now = func() time.Time { return now }

	a := r.get("a")
	assert.Same(t, a, r.get("a"))
	now = now.Add(30 * time.Minute)
	r.get("b")
	assert.Equal(t, 2, r.count())

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, r.evictIdle())
	assert.Equal(t, 1, r.count())
	assert.Error(t, a.ctx.Err())

	r.closeAll()
	assert.Equal(t, 0, r.count())
}

func TestVisitorCartsArePerSlug(t *testing.T) {
	store := cart.NewMemoryStore()
	r := newVisitorRegistry(backend.NewClient("http://127.0.0.1:1", nil), store, "", "", time.Second, time.Hour)
	v := r.get("visitor")
	ctx := context.Background()

	tacos, err := r.cart(ctx, v, "taco-place")
	require.NoError(t, err)
	again, err := r.cart(ctx, v, "taco-place")
	require.NoError(t, err)
	assert.Same(t, tacos, again)

	_, err = tacos.Apply(ctx, func(c *cart.Cart) {
		c.AddItem(cart.ItemFrom(models.MenuItem{ID: "taco", Name: "Taco", Price: 500}))
	})
	require.NoError(t, err)

	burritos, err := r.cart(ctx, v, "burrito-bar")
	require.NoError(t, err)
	assert.Equal(t, 0, burritos.Cart().TotalCount())

	snapshot, ok, err := store.Load(ctx, "visitor", "taco-place")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, snapshot.TotalCount)
}
