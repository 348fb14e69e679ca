package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/entitlement"
	"github.com/pavitra93/menulink/shared/models"
	"github.com/pavitra93/menulink/shared/session"
	"github.com/pavitra93/menulink/shared/utils"
)

type staticIdentities map[string]models.Identity

func (s staticIdentities) Identify(_ context.Context, token string) (*models.Identity, error) {
	identity, ok := s[token]
	if !ok {
		return nil, utils.ErrInvalidToken
	}
	return &identity, nil
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	identities := staticIdentities{
		"admin-token": {ID: "1", Email: "admin@menulink.app"},
		"owner-token": {ID: "2", Email: "owner@example.com"},
		"new-token":   {ID: "3", Email: "new@example.com"},
	}
	slugs := func(_ context.Context, token string) (string, error) {
		if token == "new-token" {
			return "", backend.ErrNotFound
		}
		return "taco-place", nil
	}
	manager := session.NewManager(session.NewMemoryStore(), identities, slugs, time.Hour)
	am := NewAuthMiddleware(manager, entitlement.NewPolicy("admin@menulink.app", ""))

	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	router := gin.New()
	router.GET("/admin", am.RequireSession(), am.RequireAdmin(), ok)
	router.GET("/dashboard", am.RequireSession(), am.RequireOwner(), ok)
	router.GET("/onboarding", am.RequireSession(), am.RequireOwner(), ok)
	return router
}

func do(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func reasonOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Reason
}

func TestRequireAdmin(t *testing.T) {
	router := newRouter(t)

	assert.Equal(t, http.StatusOK, do(router, "/admin", "admin-token").Code)

	w := do(router, "/admin", "owner-token")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
	assert.Equal(t, entitlement.ReasonNotAdmin, reasonOf(t, w))

	w = do(router, "/admin", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, entitlement.ReasonUnauthenticated, reasonOf(t, w))
}

func TestRequireOwner(t *testing.T) {
	router := newRouter(t)

	assert.Equal(t, http.StatusOK, do(router, "/dashboard", "owner-token").Code)

	w := do(router, "/dashboard", "new-token")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/onboarding", w.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, do(router, "/onboarding", "new-token").Code)

	w = do(router, "/dashboard", "forged")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
}

func TestTokenCookie(t *testing.T) {
	router := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "owner-token"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVisitor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Visitor(time.Hour, false))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, VisitorID(c)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	first := w.Body.String()
	assert.Len(t, first, 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: first})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, first, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "not-a-uuid"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
}
