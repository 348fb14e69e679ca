package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pavitra93/menulink/shared/storage"
)

// GatewayConfig holds the public/dashboard gateway configuration
type GatewayConfig struct {
	Port           string
	BackendURL     string
	PublicURL      string
	PublicFilesURL string
	ViewerURL      string
	AdminEmail     string
	AdminRole      string
	JWTSecret      string
	JWKSURL        string
	SessionTTL     time.Duration
	VisitorTTL     time.Duration
	ResolveTimeout time.Duration
	CartTTL        time.Duration
	CurrencySymbol string
	SupportPhone   string
	MaxUploadBytes int64
	UploadBackend  string
	AWSRegion      string
	S3Bucket       string
	KafkaBroker    string
	HandoffTopic   string
	Redis          RedisConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// HandoffConfig holds the handoff relay service configuration
type HandoffConfig struct {
	Port           string
	KafkaBroker    string
	HandoffTopic   string
	ConsumerGroup  string
	NotifyEndpoint string
	MaxRetries     int
	BatchSize      int
	CheckInterval  time.Duration
	RetryBaseDelay time.Duration
}

// GetGatewayConfig returns gateway configuration from environment variables
func GetGatewayConfig() *GatewayConfig {
	backendURL := strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/")
	return &GatewayConfig{
		Port:           getEnv("GATEWAY_PORT", "8080"),
		BackendURL:     backendURL,
		PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		PublicFilesURL: strings.TrimRight(getEnv("PUBLIC_FILES_URL", backendURL+"/public"), "/"),
		ViewerURL:      getEnv("DOCUMENT_VIEWER_URL", "https://docs.google.com/gview?embedded=true&url="),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminRole:      os.Getenv("ADMIN_ROLE"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWKSURL:        os.Getenv("JWKS_URL"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		VisitorTTL:     getEnvDuration("VISITOR_TTL", 2*time.Hour),
		ResolveTimeout: getEnvDuration("RESOLVE_TIMEOUT", 15*time.Second),
		CartTTL:        getEnvDuration("CART_TTL", 24*time.Hour),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
		SupportPhone:   getEnv("SUPPORT_WHATSAPP", ""),
		MaxUploadBytes: uploadLimit(int64(getEnvInt("MAX_UPLOAD_BYTES", int(storage.MaxPDFBytes)))),
		UploadBackend:  getEnv("UPLOAD_BACKEND", "backend"),
		AWSRegion:      getEnv("AWS_REGION", "ap-south-1"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		HandoffTopic:   getEnv("HANDOFF_TOPIC", "order-handoffs"),
		Redis:          GetRedisConfig(),
	}
}

// uploadLimit keeps the configured limit within the PDF ceiling
func uploadLimit(configured int64) int64 {
	if configured <= 0 {
		return storage.MaxPDFBytes
	}
	return min(configured, storage.MaxPDFBytes)
}

// GetRedisConfig returns Redis configuration from environment variables
func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

// GetHandoffConfig returns handoff relay configuration from environment variables
func GetHandoffConfig() *HandoffConfig {
	return &HandoffConfig{
		Port:           getEnv("HANDOFF_SERVICE_PORT", "8086"),
		KafkaBroker:    getEnv("KAFKA_BROKER", "localhost:9092"),
		HandoffTopic:   getEnv("HANDOFF_TOPIC", "order-handoffs"),
		ConsumerGroup:  getEnv("HANDOFF_CONSUMER_GROUP", "handoff-service"),
		NotifyEndpoint: strings.TrimRight(getEnv("NOTIFY_ENDPOINT", "http://localhost:9000"), "/"),
		MaxRetries:     getEnvInt("RETRY_MAX_ATTEMPTS", 8),
		BatchSize:      getEnvInt("RETRY_BATCH_SIZE", 100),
		CheckInterval:  getEnvDuration("RETRY_CHECK_INTERVAL", 30*time.Second),
		RetryBaseDelay: getEnvDuration("RETRY_BASE_DELAY", time.Minute),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
