package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sketchbook/sketchbook/pkg/logger"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Upload    UploadConfig
	Seed      SeedConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Production reports whether cookies must be marked secure.
func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.Environment, "production")
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
}

// StorageConfig selects the blob backend. An empty MinIO endpoint means the
// local in-process store is used and blobs are served from PublicURL.
type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	Bucket       string
	PublicURL    string
	SignedURLTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type UploadConfig struct {
	MaxBytes int64
}

// SeedConfig names a user created at startup when the in-memory repositories
// are in use. Empty Username disables seeding.
type SeedConfig struct {
	Username string
	Email    string
	Password string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "4000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "sketchbook")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("JWT_TTL_MINUTES", 60*24*7)
	viper.SetDefault("JWT_COOKIE_NAME", "token")
	viper.SetDefault("MINIO_BUCKET", "sketchbook")
	viper.SetDefault("SIGNED_URL_TTL_SECONDS", 300)
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("UPLOAD_MAX_BYTES", 10<<20)

	port := viper.GetString("SERVER_PORT")
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}
	env := viper.GetString("SERVER_ENVIRONMENT")
	if os.Getenv("NODE_ENV") == "production" {
		env = "production"
	}
	uri := viper.GetString("DB_URL")
	if uri == "" {
		uri = viper.GetString("MONGODB_URI")
	}
	publicURL := viper.GetString("BLOB_PUBLIC_URL")
	if publicURL == "" {
		publicURL = "http://localhost:" + port + "/blobs"
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         port,
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  env,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      uri,
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			TTL:        time.Duration(viper.GetInt("JWT_TTL_MINUTES")) * time.Minute,
			CookieName: viper.GetString("JWT_COOKIE_NAME"),
		},
		Storage: StorageConfig{
			Endpoint:     viper.GetString("MINIO_ENDPOINT"),
			AccessKey:    viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey:    os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:       viper.GetBool("MINIO_USE_SSL"),
			Bucket:       viper.GetString("MINIO_BUCKET"),
			PublicURL:    strings.TrimRight(publicURL, "/"),
			SignedURLTTL: time.Duration(viper.GetInt("SIGNED_URL_TTL_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Upload: UploadConfig{
			MaxBytes: viper.GetInt64("UPLOAD_MAX_BYTES"),
		},
		Seed: SeedConfig{
			Username: viper.GetString("SEED_USERNAME"),
			Email:    viper.GetString("SEED_EMAIL"),
			Password: viper.GetString("SEED_PASSWORD"),
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		if cfg.Server.Production() {
			return nil, errMissing("JWT_SECRET")
		}
		logger.Warn("JWT_SECRET is not set; using an insecure development secret")
		cfg.JWT.Secret = "sketchbook-development-secret"
	}

	return cfg, nil
}

type missingError string

func (m missingError) Error() string { return "environment variable " + string(m) + " is required" }

func errMissing(key string) error { return missingError(key) }
