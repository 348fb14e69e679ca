package session

import (
	"github.com/gin-gonic/gin"

	"github.com/pavitra93/menulink/shared/models"
)

const (
	contextSession = "session"
	contextToken   = "access_token"
)

// Attach stores the session and its token on the request context
func Attach(c *gin.Context, s *models.TokenSession, token string) {
	c.Set(contextSession, s)
	c.Set(contextToken, token)
}

// FromContext returns the session attached by the auth middleware
func FromContext(c *gin.Context) (*models.TokenSession, bool) {
	v, ok := c.Get(contextSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*models.TokenSession)
	return s, ok && s != nil
}

// IdentityFromContext returns the signed-in identity, or nil
func IdentityFromContext(c *gin.Context) *models.Identity {
	s, ok := FromContext(c)
	if !ok {
		return nil
	}
	return &s.Identity
}

// TokenFromContext returns the bearer token of the current request
func TokenFromContext(c *gin.Context) string {
	return c.GetString(contextToken)
}
