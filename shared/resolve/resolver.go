package resolve

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pavitra93/menulink/shared/backend"
)

// ErrSuperseded is returned by Lookup.Wait when a newer navigation started
// before the lookup finished. Its result was discarded.
var ErrSuperseded = errors.New("lookup superseded by a newer navigation")

// Status is the lifecycle state of a view's slug resolution
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusNotFound Status = "not_found"
	StatusInactive Status = "inactive"
	StatusOther    Status = "other"
)

// Terminal reports whether the status ends a lookup
func (s Status) Terminal() bool {
	switch s {
	case StatusReady, StatusNotFound, StatusInactive, StatusOther:
		return true
	}
	return false
}

func statusOf(kind Kind) Status {
	switch kind {
	case KindReady:
		return StatusReady
	case KindNotFound:
		return StatusNotFound
	case KindInactive:
		return StatusInactive
	default:
		return StatusOther
	}
}

// State is what a view displays for its current slug
type State[T any] struct {
	Slug    string `json:"slug,omitempty"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Payload *T     `json:"payload,omitempty"`
}

// FetchFunc issues the backend request for one slug
type FetchFunc func(ctx context.Context, slug string) (*backend.Response, error)

// DecodeFunc extracts the typed payload from a ready envelope
type DecodeFunc[T any] func(body []byte) (*T, error)

// Option configures a Resolver
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithTimeout bounds each lookup; a lookup that runs out of time is classified
// like any other transport failure
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Resolver runs the Idle -> Loading -> terminal state machine for one view.
// Only the most recently requested slug may set the displayed state.
type Resolver[T any] struct {
	fetch   FetchFunc
	decode  DecodeFunc[T]
	subject Subject
	opts    options

	mu     sync.Mutex
	gen    uint64
	state  State[T]
	cancel context.CancelFunc
}

// NewResolver creates an idle resolver
func NewResolver[T any](subject Subject, fetch FetchFunc, decode DecodeFunc[T], opts ...Option) *Resolver[T] {
	r := &Resolver[T]{
		fetch:   fetch,
		decode:  decode,
		subject: subject,
		state:   State[T]{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// Lookup is the handle for one navigation
type Lookup[T any] struct {
	slug       string
	done       chan struct{}
	state      State[T]
	superseded bool
}

// Slug returns the slug this lookup resolves
func (l *Lookup[T]) Slug() string {
	return l.slug
}

// Done is closed once the lookup reached a terminal state or was discarded
func (l *Lookup[T]) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the lookup finishes. A superseded lookup returns its own
// result together with ErrSuperseded; that result was never displayed.
func (l *Lookup[T]) Wait(ctx context.Context) (State[T], error) {
	select {
	case <-l.done:
	case <-ctx.Done():
		return State[T]{Slug: l.slug, Status: StatusLoading}, ctx.Err()
	}
	if l.superseded {
		return l.state, ErrSuperseded
	}
	return l.state, nil
}

// Navigate restarts the machine for slug and issues exactly one fetch. Any
// lookup still in flight is cancelled and its result will be discarded.
// parent should live as long as the view, not a single request.
func (r *Resolver[T]) Navigate(parent context.Context, slug string) *Lookup[T] {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen

	var ctx context.Context
	var cancel context.CancelFunc
	if r.opts.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, r.opts.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	r.cancel = cancel
	r.state = State[T]{Slug: slug, Status: StatusLoading}
	r.mu.Unlock()

	lookup := &Lookup[T]{slug: slug, done: make(chan struct{})}
	go r.run(ctx, cancel, gen, lookup)
	return lookup
}

func (r *Resolver[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, lookup *Lookup[T]) {
	defer cancel()

	resp, err := r.fetch(ctx, lookup.slug)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	st := r.settle(lookup.slug, Classify(r.subject, resp, err))

	r.mu.Lock()
	lookup.state = st
	lookup.superseded = gen != r.gen
	if !lookup.superseded {
		r.state = st
	}
	r.mu.Unlock()

	close(lookup.done)
}

func (r *Resolver[T]) settle(slug string, outcome Outcome) State[T] {
	st := State[T]{Slug: slug, Status: statusOf(outcome.Kind), Message: outcome.Message}
	if outcome.Kind != KindReady {
		return st
	}
	payload, err := r.decode(outcome.Payload)
	if err != nil || payload == nil {
		return State[T]{Slug: slug, Status: StatusOther, Message: r.subject.Other}
	}
	st.Payload = payload
	return st
}

// State returns what the view currently displays
func (r *Resolver[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close cancels any in-flight lookup and returns the view to Idle
func (r *Resolver[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
	r.state = State[T]{Status: StatusIdle}
}
