package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/careflow-portal/internal/apperr"
)

// Provider keys recognised by Require.
const (
	KeyVideoProvider = "videoProviderKey"
	KeyEmailProvider = "emailProviderKey"
	KeyDataStoreURL  = "dataStoreUrl"
	KeyDataStoreKey  = "dataStoreKey"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Data store
	DatabaseURL  string
	DataStoreKey string

	// Authentication
	AuthJWTSecret   string
	AuthJWTAudience string

	// Video provider (Daily)
	DailyAPIKey     string
	DailyAPIBaseURL string
	VideoRoomPrefix string
	VideoRoomTTL    time.Duration

	// Email delivery
	EmailProvider    string
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string

	// AWS (SES)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Redis (rate limiting)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	CORSAllowedOrigins     []string
	RoomRateLimitPerMinute int
	ProviderTimeout        time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DataStoreKey: getEnv("DATA_STORE_KEY", ""),

		AuthJWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
		AuthJWTAudience: getEnv("AUTH_JWT_AUDIENCE", "authenticated"),

		DailyAPIKey:     getEnv("DAILY_API_KEY", ""),
		DailyAPIBaseURL: getEnv("DAILY_API_BASE_URL", "https://api.daily.co/v1"),
		VideoRoomPrefix: getEnv("VIDEO_ROOM_PREFIX", "careflow"),
		VideoRoomTTL:    getEnvAsDuration("VIDEO_ROOM_TTL", time.Hour),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "onboarding@careflow.health"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Healthcare"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RoomRateLimitPerMinute: getEnvAsInt("ROOM_RATE_LIMIT_PER_MINUTE", 20),
		ProviderTimeout:        getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
	}
}

// ProviderKeys returns the recognised provider credentials by key name.
func (c *Config) ProviderKeys() map[string]string {
	emailKey := c.SendGridAPIKey
	if c.EmailProvider == "ses" || c.EmailProvider == "stub" {
		// SES authenticates through the AWS credential chain; the stub needs nothing.
		emailKey = c.EmailProvider
	}
	return map[string]string{
		KeyVideoProvider: c.DailyAPIKey,
		KeyEmailProvider: emailKey,
		KeyDataStoreURL:  c.DatabaseURL,
		KeyDataStoreKey:  c.DataStoreKey,
	}
}

// Require fails with a service-unavailable error naming the first missing key.
func (c *Config) Require(keys ...string) error {
	values := c.ProviderKeys()
	for _, key := range keys {
		if strings.TrimSpace(values[key]) == "" {
			return apperr.NewServiceUnavailable(key + " is not configured")
		}
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
