package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/entitlement"
	"github.com/pavitra93/menulink/shared/session"
	"github.com/pavitra93/menulink/shared/utils"
)

// TokenCookie carries the bearer token for browser clients
const TokenCookie = "menulink_token"

// AuthMiddleware gates the signed-in surfaces
type AuthMiddleware struct {
	sessions *session.Manager
	policy   entitlement.Policy
}

// NewAuthMiddleware creates the auth middleware
func NewAuthMiddleware(sessions *session.Manager, policy entitlement.Policy) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		policy:   policy,
	}
}

// RequireSession resumes the session for the request token. Requests
// without a valid token are sent to sign-in.
func (am *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			abortWithRedirect(c, entitlement.SignInPath, entitlement.ReasonUnauthenticated, "Authorization token required")
			return
		}

		s, err := am.sessions.Resume(c.Request.Context(), token)
		if err != nil {
			logrus.WithError(err).Debug("Session rejected")
			message := "Invalid token"
			if errors.Is(err, session.ErrSessionExpired) {
				message = "Session expired"
			}
			abortWithRedirect(c, entitlement.SignInPath, entitlement.ReasonUnauthenticated, message)
			return
		}

		session.Attach(c, s, token)
		c.Set("user_id", s.Identity.ID)
		c.Set("email", s.Identity.Email)
		c.Next()
	}
}

// RequireAdmin admits only administrators. Must run after RequireSession.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := entitlement.Admin(session.IdentityFromContext(c), am.policy)
		if !decision.Allowed {
			logrus.WithFields(logrus.Fields{
				"email":  c.GetString("email"),
				"reason": decision.Reason,
			}).Warn("Admin access denied")
			abortWithRedirect(c, decision.Redirect, decision.Reason, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequireOwner admits signed-in owners and forces onboarding for those
// without a restaurant. Must run after RequireSession.
func (am *AuthMiddleware) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, _ := session.FromContext(c)
		hasRestaurant := s != nil && s.HasRestaurant()
		decision := entitlement.OwnerDashboard(session.IdentityFromContext(c), hasRestaurant, c.Request.URL.Path)
		if !decision.Allowed {
			abortWithRedirect(c, decision.Redirect, decision.Reason, "Restaurant setup required")
			return
		}
		c.Next()
	}
}

// ExtractToken reads the bearer token from the Authorization header, then
// from the token cookie
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		return authHeader
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

func abortWithRedirect(c *gin.Context, location, reason, message string) {
	c.Header("Location", location)
	utils.ReasonResponse(c, http.StatusSeeOther, reason, message, gin.H{"redirect": location})
	c.Abort()
}
