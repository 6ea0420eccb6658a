package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const defaultMaxUploadBytes = 100 * 1024 * 1024

// Config holds the environment driven configuration for the resource service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"edu-resources"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"RESOURCE_API_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Registry Selection
	RegistryBackend string `env:"REGISTRY_BACKEND" envDefault:"sql"` // Options: "sql" or "memory"

	// Database (sqlite://path or postgres://...)
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"sqlite://data/resources.db"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"` // Options: "local" or "s3"

	// Local Storage Configuration
	LocalUploadDir   string `env:"LOCAL_UPLOAD_DIR" envDefault:"public/uploads"`
	PublicPathPrefix string `env:"PUBLIC_PATH_PREFIX" envDefault:"/uploads"`
	PublicBaseURL    string `env:"PUBLIC_BASE_URL"` // e.g. "https://edu.example.com"; empty yields root-relative URLs

	// Bucket Configuration
	BucketEndpoint       string        `env:"BUCKET_ENDPOINT_URL"`
	BucketAccessKeyID    string        `env:"BUCKET_ACCESS_KEY_ID"`
	BucketSecretKey      string        `env:"BUCKET_ACCESS_KEY_SECRET"`
	BucketName           string        `env:"BUCKET_NAME"`
	BucketRegion         string        `env:"BUCKET_REGION" envDefault:"cn-beijing"`
	BucketKeyPrefix      string        `env:"BUCKET_KEY_PREFIX" envDefault:"resources"`
	BucketPublicEndpoint string        `env:"BUCKET_PUBLIC_ENDPOINT"`
	BucketUsePathStyle   bool          `env:"BUCKET_USE_PATH_STYLE" envDefault:"true"`
	BucketPresignTTL     time.Duration `env:"BUCKET_PRESIGN_TTL" envDefault:"87600h"`

	// Upload Policy
	MaxUploadBytes   int64    `env:"MAX_UPLOAD_BYTES" envDefault:"104857600"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.BucketName = strings.TrimSpace(c.BucketName)
	c.BucketAccessKeyID = strings.TrimSpace(c.BucketAccessKeyID)
	c.BucketSecretKey = strings.TrimSpace(c.BucketSecretKey)
	c.BucketEndpoint = strings.TrimSpace(c.BucketEndpoint)
	c.BucketPublicEndpoint = strings.TrimSpace(c.BucketPublicEndpoint)
	c.BucketKeyPrefix = strings.Trim(strings.TrimSpace(c.BucketKeyPrefix), "/")
	c.LocalUploadDir = strings.TrimSpace(c.LocalUploadDir)
	c.PublicBaseURL = strings.TrimSuffix(strings.TrimSpace(c.PublicBaseURL), "/")
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)

	prefix := "/" + strings.Trim(strings.TrimSpace(c.PublicPathPrefix), "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	c.PublicPathPrefix = prefix

	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}

	origins := make([]string, 0, len(c.CORSAllowOrigins))
	for _, origin := range c.CORSAllowOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.CORSAllowOrigins = origins
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsS3Storage returns true if the bucket storage backend is configured.
func (c *Config) IsS3Storage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "s3"
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "local"
}

// IsMemoryRegistry returns true when resources are kept in process memory only.
func (c *Config) IsMemoryRegistry() bool {
	return strings.ToLower(strings.TrimSpace(c.RegistryBackend)) == "memory"
}

// AllowsAnyOrigin reports whether CORS is open to every origin.
func (c *Config) AllowsAnyOrigin() bool {
	for _, origin := range c.CORSAllowOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
