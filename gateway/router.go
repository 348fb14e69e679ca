package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/config"
	"github.com/pavitra93/menulink/shared/entitlement"
	"github.com/pavitra93/menulink/shared/events"
	"github.com/pavitra93/menulink/shared/middleware"
	"github.com/pavitra93/menulink/shared/session"
	"github.com/pavitra93/menulink/shared/storage"
	"github.com/pavitra93/menulink/shared/utils"
)

// Gateway holds everything the handlers share
type Gateway struct {
	cfg       *config.GatewayConfig
	client    *backend.Client
	sessions  *session.Manager
	auth      *middleware.AuthMiddleware
	policy    entitlement.Policy
	visitors  *visitorRegistry
	publisher events.Publisher
	files     func(token string) storage.FileStore
	uploads   *uploadTracker
	redis     *redis.Client
	startedAt time.Time
}

func newRouter(g *Gateway) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(g.cfg.PublicURL))

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Gateway is healthy", gin.H{
			"backend_breaker": g.client.Breaker().GetState(),
		})
	})

	// Public pages: one browsing context per visitor cookie
	public := router.Group("/")
	public.Use(middleware.Visitor(g.cfg.VisitorTTL, false))
	{
		public.GET("/r/:slug", handleMenu(g))
		public.GET("/view", handleMenuState(g))
		public.GET("/r/:slug/cart", handleGetCart(g))
		public.POST("/r/:slug/cart/items", handleAddCartItem(g))
		public.PUT("/r/:slug/cart/items/:item_id", handleUpdateCartItem(g))
		public.DELETE("/r/:slug/cart", handleClearCart(g))
		public.POST("/r/:slug/checkout", handleCheckout(g))
		public.POST("/r/:slug/contact/:kind", handleContact(g))
		public.GET("/d/:slug", handleDocument(g))
	}

	// Account
	router.POST("/signin", handleSignIn(g))
	router.POST("/signup", handleSignUp(g))
	router.POST("/signout", g.auth.RequireSession(), handleSignOut(g))
	router.GET("/me", g.auth.RequireSession(), handleMe(g))

	// Onboarding is reachable before a restaurant exists
	onboarding := router.Group("/onboarding")
	onboarding.Use(g.auth.RequireSession(), g.auth.RequireOwner())
	{
		onboarding.GET("/check-slug/:slug", handleCheckSlug(g))
		onboarding.POST("", handleOnboarding(g))
	}

	// Owner dashboard
	dashboard := router.Group("/dashboard")
	dashboard.Use(g.auth.RequireSession(), g.auth.RequireOwner())
	{
		dashboard.GET("", handleDashboardHome(g))
		dashboard.GET("/membership", handleMembership(g))
		dashboard.GET("/settings", handleGetSettings(g))
		dashboard.PUT("/settings", handleUpdateSettings(g))

		dashboard.GET("/pdfs", handleListDocuments(g))
		dashboard.POST("/pdfs", handleCreateDocument(g))
		dashboard.GET("/pdfs/:id", handleGetDocument(g))
		dashboard.PUT("/pdfs/:id", handleUpdateDocument(g))
		dashboard.DELETE("/pdfs/:id/file", handleDeleteDocumentFile(g))
		dashboard.GET("/uploads/:id", handleUploadProgress(g))
	}

	// Operator console
	admin := router.Group("/admin")
	admin.Use(g.auth.RequireSession(), g.auth.RequireAdmin())
	{
		admin.GET("/status", handleAdminStatus(g))
		admin.Any("/api/*path", handleAdminProxy(g))
	}

	return router
}
