package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvProduction disables error details in responses and switches logs to JSON.
	EnvProduction = "production"

	defaultJWTSecret = "change-me"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	Env        string
	LogLevel   string

	DBDriver         string
	DBDSN            string
	DBConnectRetries int
	DBConnectBackoff time.Duration

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret string

	GoogleClientID string
	GoogleIssuer   string
	GoogleJWKSURL  string

	ExternalAPIURL      string
	ExternalAPITimeout  time.Duration
	ExternalAPIStrict   bool
	ExternalAPICacheTTL time.Duration

	CORSOrigins []string
	StaticDir   string
	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. Values from a
// local .env file are applied first; variables already set in the
// environment take precedence.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "5001"),
		Env:        getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBDSN:            getEnv("DB_DSN", "user:password@tcp(localhost:3306)/stockpile?charset=utf8mb4&parseTime=True&loc=Local"),
		DBConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),
		DBConnectBackoff: getEnvDuration("DB_CONNECT_BACKOFF", 2*time.Second),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleIssuer:   getEnv("GOOGLE_ISSUER", "https://accounts.google.com"),
		GoogleJWKSURL:  getEnv("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs"),

		ExternalAPIURL:      getEnv("EXTERNAL_API_URL", "https://api.publicapis.org/random"),
		ExternalAPITimeout:  getEnvDuration("EXTERNAL_API_TIMEOUT", 5*time.Second),
		ExternalAPIStrict:   getEnvBool("EXTERNAL_API_STRICT", false),
		ExternalAPICacheTTL: getEnvDuration("EXTERNAL_API_CACHE_TTL", time.Minute),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		StaticDir:   os.Getenv("STATIC_DIR"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate rejects configurations that are unsafe to serve with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.DBConnectRetries < 1 {
		return errors.New("DB_CONNECT_RETRIES must be at least 1")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
