// Package session holds the process-wide signed-in state: which bearer
// tokens are live, whose they are and whether the owner has onboarded.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/models"
	"github.com/pavitra93/menulink/shared/utils"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrNoToken         = errors.New("no token")
)

// Store keeps sessions keyed by token hash
type Store interface {
	Get(ctx context.Context, key string) (*models.TokenSession, error)
	Put(ctx context.Context, key string, s *models.TokenSession, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdentityResolver turns a bearer token into an identity
type IdentityResolver interface {
	Identify(ctx context.Context, token string) (*models.Identity, error)
}

// SlugLookup returns the restaurant slug owned by the token, or
// backend.ErrNotFound before onboarding
type SlugLookup func(ctx context.Context, token string) (string, error)

// Manager owns the session lifecycle. Sign-in and sign-up begin a session,
// every gated request resumes one and sign-out ends it.
type Manager struct {
	store      Store
	identities IdentityResolver
	slugs      SlugLookup
	ttl        time.Duration
	now        func() time.Time
}

// NewManager creates a session manager. slugs may be nil.
func NewManager(store Store, identities IdentityResolver, slugs SlugLookup, ttl time.Duration) *Manager {
	return &Manager{
		store:      store,
		identities: identities,
		slugs:      slugs,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Begin verifies the token and records a fresh session for it
func (m *Manager) Begin(ctx context.Context, token string) (*models.TokenSession, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	identity, err := m.identities.Identify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to identify token: %w", err)
	}

	now := m.now()
	s := &models.TokenSession{
		Identity:   *identity,
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(m.ttl),
		SessionID:  uuid.New().String(),
	}
	if m.slugs != nil {
		slug, err := m.slugs(ctx, token)
		switch {
		case err == nil:
			s.RestaurantSlug = slug
		case errors.Is(err, backend.ErrNotFound):
		default:
			return nil, fmt.Errorf("failed to look up restaurant: %w", err)
		}
	}

	if err := m.store.Put(ctx, utils.TokenHash(token), s, m.ttl); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"session_id": s.SessionID,
		"user_id":    s.Identity.ID,
	}).Info("Session started")
	return s, nil
}

// Resume returns the live session for token. A token issued elsewhere and
// not yet known gets a session on first use.
func (m *Manager) Resume(ctx context.Context, token string) (*models.TokenSession, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	key := utils.TokenHash(token)

	s, err := m.store.Get(ctx, key)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Begin(ctx, token)
	}
	if err != nil {
		return nil, err
	}

	now := m.now()
	if now.After(s.ExpiresAt) {
		_ = m.store.Delete(ctx, key)
		return nil, ErrSessionExpired
	}

	s.LastUsedAt = now
	if err := m.store.Put(ctx, key, s, s.ExpiresAt.Sub(now)); err != nil {
		logrus.WithError(err).Warn("Failed to touch session")
	}
	return s, nil
}

// MarkOnboarded records the restaurant slug after onboarding completes
func (m *Manager) MarkOnboarded(ctx context.Context, token, slug string) error {
	key := utils.TokenHash(token)
	s, err := m.store.Get(ctx, key)
	if err != nil {
		return err
	}
	s.RestaurantSlug = slug
	return m.store.Put(ctx, key, s, s.ExpiresAt.Sub(m.now()))
}

// End drops the session for token
func (m *Manager) End(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}
	if err := m.store.Delete(ctx, utils.TokenHash(token)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
