// Package config loads and validates EduPath configuration from environment
// variables. Every setting has a sensible default so a development instance
// starts with nothing but DATABASE_URL set.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENVIRONMENT
// ══════════════════════════════════════════════════════════════════════════════

// Environment represents the deployment environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION STRUCTS
// ══════════════════════════════════════════════════════════════════════════════

// Config is the root configuration for all EduPath services.
type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	HTTP           HTTPConfig
	Payment        PaymentConfig
	Recommendation RecommendationConfig
	Assistance     AssistanceConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name            string
	Environment     Environment
	Debug           bool
	Version         string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	MigrateOnStart  bool
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	EnableCORS         bool
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// PaymentConfig holds billing settings.
type PaymentConfig struct {
	// CallbackSecret signs gateway callbacks. Required in production.
	CallbackSecret string
}

// RecommendationConfig holds recommendation engine settings.
type RecommendationConfig struct {
	CacheTTL time.Duration
}

// AssistanceConfig holds learning-assistance settings.
type AssistanceConfig struct {
	HourlyQuota int
}

// ══════════════════════════════════════════════════════════════════════════════
// LOADING
// ══════════════════════════════════════════════════════════════════════════════

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App:            loadAppConfig(),
		Database:       loadDatabaseConfig(),
		Redis:          loadRedisConfig(),
		HTTP:           loadHTTPConfig(),
		Payment:        loadPaymentConfig(),
		Recommendation: loadRecommendationConfig(),
		Assistance:     loadAssistanceConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))

	return AppConfig{
		Name:            getEnv("APP_NAME", "edupath-core"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	url := getEnv("DATABASE_URL", "")
	if url == "" {
		// Build from individual components if provided.
		host := getEnv("DB_HOST", "")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "")
		pass := getEnv("DB_PASSWORD", "")
		name := getEnv("DB_NAME", "edupath")
		sslmode := getEnv("DB_SSLMODE", "prefer")

		if host != "" && user != "" {
			url = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				user, pass, host, port, name, sslmode)
		}
	}

	return DatabaseConfig{
		URL:             url,
		MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
		MinConns:        getEnvInt("DB_MIN_CONNS", 5),
		MaxConnLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		MaxConnIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		MigrateOnStart:  getEnvBool("DB_MIGRATE_ON_START", true),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnvInt("REDIS_PORT", 6379),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getEnvInt("REDIS_DB", 0),
		PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func loadHTTPConfig() HTTPConfig {
	origins := strings.Split(getEnv("HTTP_ALLOWED_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return HTTPConfig{
		Host:               getEnv("HTTP_HOST", "0.0.0.0"),
		Port:               getEnvInt("HTTP_PORT", 8080),
		ReadTimeout:        getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:        getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		EnableCORS:         getEnvBool("HTTP_ENABLE_CORS", true),
		AllowedOrigins:     origins,
		RateLimitPerMinute: getEnvInt("HTTP_RATE_LIMIT_PER_MINUTE", 120),
	}
}

func loadPaymentConfig() PaymentConfig {
	return PaymentConfig{
		CallbackSecret: getEnv("PAYMENT_CALLBACK_SECRET", ""),
	}
}

func loadRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		CacheTTL: getEnvDuration("RECOMMENDATION_CACHE_TTL", 10*time.Minute),
	}
}

func loadAssistanceConfig() AssistanceConfig {
	return AssistanceConfig{
		HourlyQuota: getEnvInt("ASSISTANCE_HOURLY_QUOTA", 10),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL (or DB_HOST + DB_USER) is required")
	}

	if c.App.Environment == EnvProduction {
		if c.Payment.CallbackSecret == "" {
			errs = append(errs, "PAYMENT_CALLBACK_SECRET is required in production")
		}
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}

	if c.Assistance.HourlyQuota < 1 {
		errs = append(errs, "ASSISTANCE_HOURLY_QUOTA must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
