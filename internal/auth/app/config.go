package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Required: issuer claim for session tokens

	DatabaseFile string // Optional: path to SQLite database file (default: ./dexxter.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	CodeTTL      time.Duration // Optional: validity window for emailed codes (default: 60s)
	ChallengeTTL time.Duration // Optional: lifetime of a pending admin login (default: 5m)
	SessionTTL   time.Duration // Optional: lifetime of issued session tokens (default: 12h)

	SMTPHost     string // Required for real deployments: SMTP relay host
	SMTPPort     int    // SMTP relay port (default: 587)
	SMTPUsername string // Optional: SMTP auth username
	SMTPPassword string // Optional: SMTP auth password
	SMTPFrom     string // Sender address for verification emails

	SeedAdminUsername    string // Optional: admin to create when the database is empty
	SeedAdminPassword    string
	SeedAdminEmail       string
	SeedResellerUsername string // Optional: reseller to create when the database is empty
	SeedResellerPassword string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:       getEnvOrDefault("AUTH_ISSUER", "dexxter-auth"),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "dexxter.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		CodeTTL:      getEnvDurationOrDefault("AUTH_CODE_TTL", 60*time.Second),
		ChallengeTTL: getEnvDurationOrDefault("AUTH_CHALLENGE_TTL", 5*time.Minute),
		SessionTTL:   getEnvDurationOrDefault("AUTH_SESSION_TTL", 12*time.Hour),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "DEXX-TER Security <noreply@dexxter.local>"),

		SeedAdminUsername:    os.Getenv("SEED_ADMIN_USERNAME"),
		SeedAdminPassword:    os.Getenv("SEED_ADMIN_PASSWORD"),
		SeedAdminEmail:       os.Getenv("SEED_ADMIN_EMAIL"),
		SeedResellerUsername: os.Getenv("SEED_RESELLER_USERNAME"),
		SeedResellerPassword: os.Getenv("SEED_RESELLER_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
