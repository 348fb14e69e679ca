package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/models"
	"github.com/pavitra93/menulink/shared/utils"
)

type mockIdentities struct {
	mock.Mock
}

func (m *mockIdentities) Identify(ctx context.Context, token string) (*models.Identity, error) {
	args := m.Called(ctx, token)
	if identity, ok := args.Get(0).(*models.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func noRestaurant(context.Context, string) (string, error) {
	return "", backend.ErrNotFound
}

func TestBeginAndResume(t *testing.T) {
	ctx := context.Background()
	identities := new(mockIdentities)
	identities.On("Identify", mock.Anything, "tok").
		Return(&models.Identity{ID: "u1", Email: "owner@example.com"}, nil).Once()

	slugs := func(context.Context, string) (string, error) { return "taco-place", nil }
	m := NewManager(NewMemoryStore(), identities, slugs, time.Hour)

	s, err := m.Begin(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", s.Identity.Email)
	assert.Equal(t, "taco-place", s.RestaurantSlug)
	assert.NotEmpty(t, s.SessionID)

	resumed, err := m.Resume(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, s.SessionID, resumed.SessionID)
	identities.AssertExpectations(t)
}

func TestResumeUnknownTokenBeginsSession(t *testing.T) {
	identities := new(mockIdentities)
	identities.On("Identify", mock.Anything, "external").
		Return(&models.Identity{ID: "u2", Email: "new@example.com"}, nil)

	m := NewManager(NewMemoryStore(), identities, noRestaurant, time.Hour)
	s, err := m.Resume(context.Background(), "external")
	require.NoError(t, err)
	assert.False(t, s.HasRestaurant())
}

func TestResumeRejectsInvalidToken(t *testing.T) {
	identities := new(mockIdentities)
	identities.On("Identify", mock.Anything, "bad").Return(nil, utils.ErrInvalidToken)

	m := NewManager(NewMemoryStore(), identities, nil, time.Hour)
	_, err := m.Resume(context.Background(), "bad")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)

	_, err = m.Resume(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestResumeExpiredSession(t *testing.T) {
	ctx := context.Background()
	identities := new(mockIdentities)
	identities.On("Identify", mock.Anything, "tok").Return(&models.Identity{ID: "u1"}, nil)

	store := NewMemoryStore()
	m := NewManager(store, identities, nil, time.Minute)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }

	_, err := m.Begin(ctx, "tok")
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = m.Resume(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = store.Get(ctx, utils.TokenHash("tok"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBeginPropagatesSlugLookupFailure(t *testing.T) {
	identities := new(mockIdentities)
	identities.On("Identify", mock.Anything, "tok").Return(&models.Identity{ID: "u1"}, nil)

	slugs := func(context.Context, string) (string, error) { return "", errors.New("backend down") }
	m := NewManager(NewMemoryStore(), identities, slugs, time.Hour)
	_, err := m.Begin(context.Background(), "tok")
	assert.Error(t, err)
}

func TestMarkOnboardedAndEnd(t *testing.T) {
	ctx := context.Background()
	identities := new(mockIdentities)
	identities.On("Identify", mock.Anything, "tok").Return(&models.Identity{ID: "u1"}, nil).Once()

	m := NewManager(NewMemoryStore(), identities, noRestaurant, time.Hour)
	_, err := m.Begin(ctx, "tok")
	require.NoError(t, err)

	require.NoError(t, m.MarkOnboarded(ctx, "tok", "taco-place"))
	s, err := m.Resume(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "taco-place", s.RestaurantSlug)

	require.NoError(t, m.End(ctx, "tok"))
	identities.On("Identify", mock.Anything, "tok").Return(nil, utils.ErrInvalidToken)
	_, err = m.Resume(ctx, "tok")
	assert.Error(t, err)
}

func TestContextHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Nil(t, IdentityFromContext(c))

	Attach(c, &models.TokenSession{Identity: models.Identity{Email: "owner@example.com"}}, "tok")
	assert.Equal(t, "owner@example.com", IdentityFromContext(c).Email)
	assert.Equal(t, "tok", TokenFromContext(c))
}
