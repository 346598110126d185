package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreDynamo = "dynamo"
	StoreSQLite = "sqlite"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string // "text" | "json"

	StoreDriver    string
	SQLitePath     string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	RequestTimeout      time.Duration
	ReminderLocale      string
	SubQueryConcurrency int
	RateLimitRPS        float64
	RateLimitBurst      int
	TrustProxyHeaders   bool // honour X-Forwarded-For / X-Real-IP from a fronting proxy
	MetricsEnabled      bool
	AllowedOrigins      []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Companies  string
	Selections string
	Events     string
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "production"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreDynamo)),
		SQLitePath:     getEnv("SQLITE_PATH", "data.db"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Companies:  getEnv("DYNAMO_TABLE_COMPANIES", "companies"),
			Selections: getEnv("DYNAMO_TABLE_SELECTIONS", "user_company_selections"),
			Events:     getEnv("DYNAMO_TABLE_EVENTS", "events"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		RequestTimeout:      getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ReminderLocale:      getEnv("REMINDER_LOCALE", "ja"),
		SubQueryConcurrency: getEnvInt("REMINDER_SUBQUERY_CONCURRENCY", 4),
		RateLimitRPS:        getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:      getEnvInt("RATE_LIMIT_BURST", 10),
		TrustProxyHeaders:   getEnvBool("TRUST_PROXY_HEADERS", false),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		AllowedOrigins:      strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("15s", "168h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
