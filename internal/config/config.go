package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageDriverMinIO  = "minio"
	StorageDriverS3     = "s3"
	StorageDriverMemory = "memory" // process-local, development only
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	AutoMigrate        bool
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Config holds settings for AWS S3 or any S3-compatible provider reached through the AWS SDK.
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string // optional, forces path-style addressing when set
}

// StorageConfig selects the object storage driver.
type StorageConfig struct {
	Driver       string
	SignedURLTTL time.Duration
	MinIO        MinIOConfig
	S3           S3Config
}

// AuthConfig holds bearer token and Google OAuth settings.
type AuthConfig struct {
	JWTSecret          string
	JWTExpiry          time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type ShareConfig struct {
	DefaultExpiryDays int
}

type TrashConfig struct {
	RetentionDays int
}

type PreviewConfig struct {
	MaxWidth    int
	MaxHeight   int
	JPEGQuality int
}

// ObservabilityConfig holds optional integrations. Empty values disable them.
type ObservabilityConfig struct {
	LogLevel     string
	SentryDSN    string
	AMQPURL      string
	AMQPExchange string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env           string
	AppHost       string
	Port          string
	BodyLimitMB   int
	Database      DatabaseConfig
	Storage       StorageConfig
	Auth          AuthConfig
	Share         ShareConfig
	Trash         TrashConfig
	Preview       PreviewConfig
	Observability ObservabilityConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Env:         getEnv("APP_ENV", EnvDevelopment),
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		BodyLimitMB: getEnvInt("BODY_LIMIT_MB", 100),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", StorageDriverMinIO),
			SignedURLTTL: getEnvDuration("STORAGE_SIGNED_URL_TTL", time.Hour),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			S3: S3Config{
				Region:    getEnv("S3_REGION", "us-east-1"),
				Bucket:    getEnv("S3_BUCKET", ""),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
				Endpoint:  getEnv("S3_ENDPOINT", ""),
			},
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			JWTExpiry:          getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/auth/google/callback"),
		},
		Share: ShareConfig{
			DefaultExpiryDays: getEnvInt("SHARE_DEFAULT_EXPIRY_DAYS", 7),
		},
		Trash: TrashConfig{
			RetentionDays: getEnvInt("TRASH_RETENTION_DAYS", 30),
		},
		Preview: PreviewConfig{
			MaxWidth:    getEnvInt("PREVIEW_MAX_WIDTH", 300),
			MaxHeight:   getEnvInt("PREVIEW_MAX_HEIGHT", 300),
			JPEGQuality: getEnvInt("PREVIEW_JPEG_QUALITY", 80),
		},
		Observability: ObservabilityConfig{
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			SentryDSN:    getEnv("SENTRY_DSN", ""),
			AMQPURL:      getEnv("AMQP_URL", ""),
			AMQPExchange: getEnv("AMQP_EXCHANGE", "cloudvault.events"),
		},
	}
}

// Validate reports settings that would make the server unusable.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Storage.Driver {
	case StorageDriverMinIO, StorageDriverS3:
	case StorageDriverMemory:
		if !c.IsDevelopment() {
			errs = append(errs, errors.New("STORAGE_DRIVER=memory is only allowed in development"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if c.Share.DefaultExpiryDays <= 0 {
		errs = append(errs, errors.New("SHARE_DEFAULT_EXPIRY_DAYS must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether internal error details may be exposed to clients.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
