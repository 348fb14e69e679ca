package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/entitlement"
	"github.com/pavitra93/menulink/shared/middleware"
	"github.com/pavitra93/menulink/shared/session"
	"github.com/pavitra93/menulink/shared/utils"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type issueFunc func(ctx context.Context, creds backend.Credentials) (string, error)

// handleSignIn exchanges credentials for a token and starts a session
func handleSignIn(g *Gateway) gin.HandlerFunc {
	return issueSession(g, "Signed in", g.client.SignIn)
}

// handleSignUp creates an account and starts a session
func handleSignUp(g *Gateway) gin.HandlerFunc {
	return issueSession(g, "Account created", g.client.SignUp)
}

func issueSession(g *Gateway, message string, issue issueFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
			return
		}

		token, err := issue(c.Request.Context(), backend.Credentials{Email: req.Email, Password: req.Password})
		if err != nil {
			logrus.WithError(err).WithField("email", req.Email).Warn("Credential exchange failed")
			respondError(c, err, "Authentication failed")
			return
		}

		s, err := g.sessions.Begin(c.Request.Context(), token)
		if err != nil {
			respondError(c, err, "Failed to create session")
			return
		}

		next := "/dashboard"
		if !s.HasRestaurant() {
			next = entitlement.OnboardingPath
		}
		setTokenCookie(c, token, g.cfg.SessionTTL.Seconds())

		utils.OKResponse(c, message, gin.H{
			"access_token": token,
			"token_type":   "Bearer",
			"session_id":   s.SessionID,
			"expires_at":   s.ExpiresAt,
			"user":         s.Identity,
			"redirect":     next,
		})
	}
}

// handleSignOut revokes the token at the backend and ends the session
func handleSignOut(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.TokenFromContext(c)
		if err := g.client.SignOut(c.Request.Context(), token); err != nil {
			logrus.WithError(err).Warn("Backend sign-out failed")
		}
		if err := g.sessions.End(c.Request.Context(), token); err != nil {
			utils.InternalServerErrorResponse(c, "Failed to revoke session")
			return
		}
		setTokenCookie(c, "", -1)
		utils.OKResponse(c, "Signed out", gin.H{"redirect": entitlement.SignInPath})
	}
}

// handleMe returns the signed-in account and its session
func handleMe(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session.FromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, "No active session found")
			return
		}
		utils.OKResponse(c, "Session retrieved", gin.H{
			"user":            s.Identity,
			"session_id":      s.SessionID,
			"restaurant_slug": s.RestaurantSlug,
			"created_at":      s.CreatedAt,
			"last_used_at":    s.LastUsedAt,
			"expires_at":      s.ExpiresAt,
			"is_admin":        entitlement.Admin(&s.Identity, g.policy).Allowed,
		})
	}
}

func setTokenCookie(c *gin.Context, token string, maxAge float64) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(maxAge), "/", "", false, true)
}
