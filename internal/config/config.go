package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Tenant auth at the HTTP boundary
	TenantJWTSecret string

	// Scheduling policy knobs
	DefaultTimezone       string
	SlotStepMinutes       int
	SearchWindowDays      int
	UnassignedPolicy      string
	WeekendDays           []time.Weekday
	OutboxDeliverInterval time.Duration

	AWSRegion              string
	AWSAccessKeyID         string
	AWSSecretAccessKey     string
	AWSEndpointOverride    string
	SchedulingEventsQueue  string
	CORSAllowedOrigins     []string
	RedisAddr              string
	RedisPassword          string
	RedisTLS               bool
	BusinessHoursCacheTTL  time.Duration

	// Per-IP rate limiting on the tenant API; 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		TenantJWTSecret: getEnv("TENANT_JWT_SECRET", ""),

		DefaultTimezone:       getEnv("DEFAULT_TIMEZONE", "Africa/Lagos"),
		SlotStepMinutes:       getEnvAsInt("SCHEDULING_SLOT_STEP_MINUTES", 15),
		SearchWindowDays:      getEnvAsInt("SCHEDULING_SEARCH_WINDOW_DAYS", 30),
		UnassignedPolicy:      strings.ToLower(strings.TrimSpace(getEnv("SCHEDULING_UNASSIGNED_POLICY", "shared"))),
		WeekendDays:           getEnvAsWeekdays("SCHEDULING_WEEKEND_DAYS", []time.Weekday{time.Saturday, time.Sunday}),
		OutboxDeliverInterval: getEnvAsDuration("OUTBOX_DELIVER_INTERVAL", 2*time.Second),

		AWSRegion:             getEnv("AWS_REGION", "af-south-1"),
		AWSAccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:   getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		SchedulingEventsQueue: getEnv("SCHEDULING_EVENTS_QUEUE_URL", ""),
		CORSAllowedOrigins:    getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RedisAddr:             getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisTLS:              getEnvAsBool("REDIS_TLS", false),
		BusinessHoursCacheTTL: getEnvAsDuration("BUSINESS_HOURS_CACHE_TTL", 5*time.Minute),

		RateLimitRPS:   getEnvAsFloat("API_RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvAsInt("API_RATE_LIMIT_BURST", 20),
	}
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

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

// getEnvAsList splits a comma-separated environment variable, trimming blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsWeekdays parses a comma-separated list of weekday numbers
// (0=Sunday .. 6=Saturday) into time.Weekday values.
func getEnvAsWeekdays(key string, defaultValue []time.Weekday) []time.Weekday {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []time.Weekday
	for _, p := range strings.Split(valueStr, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			return defaultValue
		}
		out = append(out, time.Weekday(n))
	}
	return out
}
