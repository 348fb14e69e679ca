package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/pavitra93/menulink/shared/cart"
	"github.com/pavitra93/menulink/shared/config"
	"github.com/pavitra93/menulink/shared/entitlement"
	"github.com/pavitra93/menulink/shared/events"
	"github.com/pavitra93/menulink/shared/middleware"
	"github.com/pavitra93/menulink/shared/session"
	"github.com/pavitra93/menulink/shared/storage"
	"github.com/pavitra93/menulink/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	cfg := config.GetGatewayConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.BackendURL, nil)

	// Sessions and carts live in Redis when it is reachable
	var sessionStore session.Store = session.NewMemoryStore()
	var cartStore cart.Store = cart.NewMemoryStore()
	redisClient, err := utils.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logrus.Warnf("Failed to connect to Redis, using in-memory sessions and carts: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		sessionStore = session.NewRedisStore(redisClient)
		cartStore = cart.NewRedisStore(redisClient, cfg.CartTTL)
	}

	sessions := session.NewManager(sessionStore, identityResolver(cfg, client), client.OwnerSlug, cfg.SessionTTL)
	policy := entitlement.NewPolicy(cfg.AdminEmail, cfg.AdminRole)
	if cfg.AdminEmail == "" && cfg.AdminRole == "" {
		logrus.Warn("ADMIN_EMAIL is not set, the operator console is closed")
	}

	var publisher events.Publisher = events.LogPublisher{}
	if cfg.KafkaBroker != "" {
		publisher = events.NewProducer(cfg.KafkaBroker, cfg.HandoffTopic)
	}
	defer publisher.Close()

	files, err := fileStore(cfg, client)
	if err != nil {
		log.Fatal("Failed to initialize file storage:", err)
	}

	visitors := newVisitorRegistry(client, cartStore, cfg.ViewerURL, cfg.PublicFilesURL, cfg.ResolveTimeout, cfg.VisitorTTL)
	defer visitors.closeAll()
	go visitors.janitor(ctx, time.Minute)

	g := &Gateway{
		cfg:       cfg,
		client:    client,
		sessions:  sessions,
		auth:      middleware.NewAuthMiddleware(sessions, policy),
		policy:    policy,
		visitors:  visitors,
		publisher: publisher,
		files:     files,
		uploads:   newUploadTracker(10 * time.Minute),
		redis:     redisClient,
		startedAt: time.Now(),
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(g),
	}

	go func() {
		logrus.Infof("Gateway starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start gateway:", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Gateway shutdown failed: %v", err)
	}
}

// identityResolver verifies tokens locally when a key is configured and
// otherwise asks the backend who the token belongs to
func identityResolver(cfg *config.GatewayConfig, client *backend.Client) session.IdentityResolver {
	switch {
	case cfg.JWKSURL != "":
		logrus.Info("Verifying tokens against JWKS")
		return utils.NewJWKSTokenVerifier(utils.NewJWKSValidator(cfg.JWKSURL, nil))
	case cfg.JWTSecret != "":
		logrus.Info("Verifying tokens with shared secret")
		return utils.NewHMACTokenVerifier(cfg.JWTSecret)
	default:
		logrus.Info("Resolving tokens through the backend")
		return client
	}
}

// fileStore picks where uploaded PDFs go
func fileStore(cfg *config.GatewayConfig, client *backend.Client) (func(token string) storage.FileStore, error) {
	if cfg.UploadBackend != "s3" {
		return func(token string) storage.FileStore {
			return client.FileStore(token)
		}, nil
	}

	s3Store, err := storage.NewS3Store(cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Storing PDFs in s3://%s", cfg.S3Bucket)
	return func(string) storage.FileStore {
		return s3Store
	}, nil
}

