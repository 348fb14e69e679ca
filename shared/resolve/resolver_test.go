package resolve

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher holds each fetch until its slug is released
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	bodies  map[string]*backend.Response
	calls   map[string]int
	started chan string
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates:   map[string]chan struct{}{},
		bodies:  map[string]*backend.Response{},
		calls:   map[string]int{},
		started: make(chan string, 16),
	}
}

func (g *gatedFetcher) respond(slug string, resp *backend.Response) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bodies[slug] = resp
	g.gates[slug] = make(chan struct{})
}

func (g *gatedFetcher) release(slug string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[slug])
}

func (g *gatedFetcher) fetch(ctx context.Context, slug string) (*backend.Response, error) {
	g.mu.Lock()
	g.calls[slug]++
	gate := g.gates[slug]
	resp := g.bodies[slug]
	g.mu.Unlock()

	g.started <- slug
	if gate != nil {
		// completes even when cancelled to model a response already in flight
		<-gate
	}
	return resp, nil
}

func restaurantBody(id string) *backend.Response {
	return response(http.StatusOK, `{"success":true,"restaurant":{"id":"`+id+`","slug":"`+id+`","name":"`+id+`","categories":[]}}`)
}

func TestResolverReady(t *testing.T) {
	fetcher := newGatedFetcher()
	fetcher.respond("taco-place", restaurantBody("taco-place"))
	r := NewResolver(RestaurantSubject, fetcher.fetch, DecodeRestaurant)

	assert.Equal(t, StatusIdle, r.State().Status)

	lookup := r.Navigate(context.Background(), "taco-place")
	<-fetcher.started
	assert.Equal(t, StatusLoading, r.State().Status)
	assert.Equal(t, "taco-place", r.State().Slug)

	fetcher.release("taco-place")
	st, err := lookup.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st.Status)
	require.NotNil(t, st.Payload)
	assert.Equal(t, "taco-place", st.Payload.ID)
	assert.Equal(t, st, r.State())
	assert.Equal(t, 1, fetcher.calls["taco-place"])
}

func TestResolverDiscardsStaleResponse(t *testing.T) {
	fetcher := newGatedFetcher()
	fetcher.respond("a", restaurantBody("a"))
	fetcher.respond("b", restaurantBody("b"))
	r := NewResolver(RestaurantSubject, fetcher.fetch, DecodeRestaurant)

	first := r.Navigate(context.Background(), "a")
	<-fetcher.started
	second := r.Navigate(context.Background(), "b")
	<-fetcher.started

	fetcher.release("b")
	st, err := second.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", st.Payload.ID)

	fetcher.release("a")
	stale, err := first.Wait(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, "a", stale.Slug)

	current := r.State()
	assert.Equal(t, StatusReady, current.Status)
	assert.Equal(t, "b", current.Slug)
	assert.Equal(t, "b", current.Payload.ID)
}

func TestResolverCancelsPreviousFetch(t *testing.T) {
	cancelled := make(chan struct{})
	fetch := func(ctx context.Context, slug string) (*backend.Response, error) {
		if slug == "slow" {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return restaurantBody(slug), nil
	}
	r := NewResolver(RestaurantSubject, fetch, DecodeRestaurant)

	slow := r.Navigate(context.Background(), "slow")
	fast := r.Navigate(context.Background(), "fast")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("previous fetch was not cancelled")
	}

	_, err := slow.Wait(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	st, err := fast.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st.Status)
	assert.Equal(t, "fast", r.State().Slug)
}

func TestResolverTerminalStates(t *testing.T) {
	tests := []struct {
		name    string
		resp    *backend.Response
		err     error
		status  Status
		message string
	}{
		{"not found", response(http.StatusNotFound, `{"success":false,"slug":false}`), nil, StatusNotFound, "Restaurant not found"},
		{"inactive", response(http.StatusForbidden, `{"success":false,"membership":false,"message":"Membership expired"}`), nil, StatusInactive, "Membership expired"},
		{"transport", nil, errors.New("dial tcp: refused"), StatusOther, TransportFailureMessage},
		{"ready without payload", response(http.StatusOK, `{"success":true}`), nil, StatusOther, "Failed to load restaurant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetch := func(context.Context, string) (*backend.Response, error) { return tt.resp, tt.err }
			r := NewResolver(RestaurantSubject, fetch, DecodeRestaurant)
			st, err := r.Navigate(context.Background(), "x").Wait(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.status, st.Status)
			assert.Equal(t, tt.message, st.Message)
			assert.Nil(t, st.Payload)
			assert.True(t, st.Status.Terminal())
		})
	}
}

func TestResolverTimeout(t *testing.T) {
	fetch := func(ctx context.Context, _ string) (*backend.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r := NewResolver(RestaurantSubject, fetch, DecodeRestaurant, WithTimeout(20*time.Millisecond))

	st, err := r.Navigate(context.Background(), "x").Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusOther, st.Status)
	assert.Equal(t, TransportFailureMessage, st.Message)
}

func TestResolverClose(t *testing.T) {
	fetch := func(ctx context.Context, _ string) (*backend.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r := NewResolver(RestaurantSubject, fetch, DecodeRestaurant)

	lookup := r.Navigate(context.Background(), "x")
	r.Close()

	_, err := lookup.Wait(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, StatusIdle, r.State().Status)
}

func TestWaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	fetch := func(context.Context, string) (*backend.Response, error) {
		<-block
		return nil, errors.New("late")
	}
	r := NewResolver(RestaurantSubject, fetch, DecodeRestaurant)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	st, err := r.Navigate(context.Background(), "x").Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StatusLoading, st.Status)
}

func TestDocumentDecoder(t *testing.T) {
	decode := DocumentDecoder("https://viewer.example/?url=", "https://files.example/public/")
	doc, err := decode([]byte(`{"success":true,"pdf":{"id":"d1","slug":"abc","file_path":"pdfs/menu.pdf"}}`))
	require.NoError(t, err)
	assert.Equal(t, "https://viewer.example/?url=https%3A%2F%2Ffiles.example%2Fpublic%2Fpdfs%2Fmenu.pdf", doc.ViewerURL)

	_, err = decode([]byte(`{"success":true,"pdf":{"id":"d1"}}`))
	assert.Error(t, err)
}

func TestDecodeRestaurantDefaultsCategories(t *testing.T) {
	restaurant, err := DecodeRestaurant([]byte(`{"success":true,"restaurant":{"id":"r1","name":"Taco Place"}}`))
	require.NoError(t, err)
	assert.Equal(t, []models.Category{}, restaurant.Categories)
}
