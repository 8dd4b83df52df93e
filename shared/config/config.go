package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxIdleConns int
	DBMaxOpenConns int
	DBAutoMigrate  bool

	// JWT
	JWTSecret      string
	JWTExpireHours int
	JWTIssuer      string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Rate Limiting
	RateLimitRequestsPerSecond    float64
	RateLimitBurst                int
	RateLimitBlockDurationMinutes int
	LoginRateLimitMaxAttempts     int
	LoginRateLimitWindowSeconds   int
	LoginRateLimitBlockMinutes    int

	// Server
	ServerPort         string
	GinMode            string
	CORSAllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string

	// Audit
	AuditRetentionDays     int
	AuditRetentionSchedule string

	// Bootstrap tenant and super admin
	DefaultOrgID       string
	DefaultOrgName     string
	SuperAdminEmail    string
	SuperAdminPassword string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("warning: .env file not found, using system environment variables")
	}

	cfg = FromEnv()
	return cfg
}

// FromEnv builds a Config from the current process environment without touching .env files.
func FromEnv() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "bcm"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		DBAutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),

		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JWTExpireHours: getEnvAsInt("JWT_EXPIRE_HOURS", 3),
		JWTIssuer:      getEnv("JWT_ISSUER", "bcm-backend"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		RateLimitRequestsPerSecond:    getEnvAsFloat("RATE_LIMIT_REQUESTS_PER_SECOND", 10),
		RateLimitBurst:                getEnvAsInt("RATE_LIMIT_BURST", 40),
		RateLimitBlockDurationMinutes: getEnvAsInt("RATE_LIMIT_BLOCK_DURATION_MINUTES", 1),
		LoginRateLimitMaxAttempts:     getEnvAsInt("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", 5),
		LoginRateLimitWindowSeconds:   getEnvAsInt("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 300),
		LoginRateLimitBlockMinutes:    getEnvAsInt("LOGIN_RATE_LIMIT_BLOCK_MINUTES", 30),

		ServerPort:         getEnv("SERVER_PORT", "8003"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AuditRetentionDays:     getEnvAsInt("AUDIT_RETENTION_DAYS", 90),
		AuditRetentionSchedule: getEnv("AUDIT_RETENTION_SCHEDULE", "0 3 * * *"),

		DefaultOrgID:       getEnv("DEFAULT_ORG_ID", "00000000-0000-0000-0000-000000000001"),
		DefaultOrgName:     getEnv("DEFAULT_ORG_NAME", "Default Organization"),
		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "admin@example.com"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "SecurePassword123!"),
	}
}

// GetConfig returns the loaded configuration, loading it on first use
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// JWTExpireDuration returns the access token lifetime
func (c *Config) JWTExpireDuration() time.Duration {
	if c.JWTExpireHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWTExpireHours) * time.Hour
}

// RateLimitBlockDuration returns how long an IP stays blocked after exhausting its bucket
func (c *Config) RateLimitBlockDuration() time.Duration {
	return time.Duration(c.RateLimitBlockDurationMinutes) * time.Minute
}

// LoginRateLimitWindow returns the window in which LoginRateLimitMaxAttempts logins are allowed
func (c *Config) LoginRateLimitWindow() time.Duration {
	return time.Duration(c.LoginRateLimitWindowSeconds) * time.Second
}

// LoginRateLimitBlockDuration returns how long an IP stays blocked after too many logins
func (c *Config) LoginRateLimitBlockDuration() time.Duration {
	return time.Duration(c.LoginRateLimitBlockMinutes) * time.Minute
}

// AuditRetention returns the age after which audit log rows are purged
func (c *Config) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}

// IsLocalDatabase reports whether the database host points at the local machine
func (c *Config) IsLocalDatabase() bool {
	return c.DBHost == "localhost" || c.DBHost == "127.0.0.1"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("warning: invalid integer for %s: %q, using default %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("warning: invalid number for %s: %q, using default %v", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
