package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavitra93/menulink/shared/utils"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestDoKeepsErrorBodies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/restaurant/taco-place", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"db down"}`))
	})

	resp, err := c.FetchRestaurant(context.Background(), "taco-place")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.JSONEq(t, `{"success":false,"message":"db down"}`, string(resp.Body))
	assert.Equal(t, 1, c.Breaker().Snapshot()["failures"])
}

func TestDoOpensBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	for i := 0; i < 5; i++ {
		_, _ = c.FetchRestaurant(context.Background(), "taco-place")
	}
	assert.Equal(t, utils.StateOpen, c.Breaker().GetState())

	_, err := c.FetchRestaurant(context.Background(), "taco-place")
	assert.ErrorIs(t, err, utils.ErrCircuitOpen)
}

func TestDoCancelledCallerIsNotABackendFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchRestaurant(ctx, "taco-place")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, c.Breaker().Snapshot()["failures"])
}

func TestDoCancelledProbeDoesNotCloseBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	now := time.Now()
	c.Breaker().WithClock(func() time.Time { return now })
	for i := 0; i < 5; i++ {
		_, _ = c.FetchRestaurant(context.Background(), "taco-place")
	}
	require.Equal(t, utils.StateOpen, c.Breaker().GetState())

	now = now.Add(31 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchRestaurant(ctx, "taco-place")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, utils.StateHalfOpen, c.Breaker().GetState())
}

func TestOwnerCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer owner":
		case "Bearer new":
			_, _ = w.Write([]byte(`{"success":false}`))
			return
		default:
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/get-slug":
			_, _ = w.Write([]byte(`{"success":true,"slug":"taco-place"}`))
		case "/api/user":
			_, _ = w.Write([]byte(`{"id":42,"email":"owner@example.com","role":"owner"}`))
		case "/api/check-membership":
			_, _ = w.Write([]byte(`{"membership":true,"expiry_date":"2025-03-12T00:00:00Z","planType":"Yearly"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	slug, err := c.OwnerSlug(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "taco-place", slug)

	_, err = c.OwnerSlug(ctx, "new")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.OwnerSlug(ctx, "forged")
	assert.ErrorIs(t, err, ErrUnauthorized)

	identity, err := c.Identify(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "42", identity.ID)
	assert.Equal(t, []string{"owner"}, identity.Roles)

	m, err := c.CheckMembership(ctx, "owner")
	require.NoError(t, err)
	assert.True(t, m.Active)
	assert.Equal(t, "2025-03-12", m.ExpiryDate.String())

	_, err = c.ListDocuments(ctx, "owner")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSignInTokenShapes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/signin":
			_, _ = w.Write([]byte(`{"data":{"token":"abc"}}`))
		case "/api/signup":
			_, _ = w.Write([]byte(`{"token":"def"}`))
		}
	})

	token, err := c.SignIn(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	token, err = c.SignUp(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "def", token)
}

func TestUploadStreamsMultipart(t *testing.T) {
	pdf := []byte("%PDF-1.4\nhello\n%%EOF\n")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer owner", r.Header.Get("Authorization"))
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, pdf, data)
		assert.Equal(t, "menu.pdf", header.Filename)
		_, _ = w.Write([]byte(`{"file_path":"uploads/menu.pdf"}`))
	})

	var sent int64
	path, err := c.FileStore("owner").Upload(context.Background(), "/tmp/menu.pdf", bytes.NewReader(pdf), int64(len(pdf)),
		func(n, total int64) { sent = n })
	require.NoError(t, err)
	assert.Equal(t, "uploads/menu.pdf", path)
	assert.EqualValues(t, len(pdf), sent)
}

func TestAPIErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"slug taken"}`))
	})

	_, err := c.CreateRestaurant(context.Background(), "owner", CreateRestaurantRequest{Title: "Taco", Slug: "taco"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "slug taken", apiErr.Message)
}
