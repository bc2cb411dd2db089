package config

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultAppEnv            = "dev"
	defaultDBPath            = "./dev.db"
	defaultPort              = "8080"
	defaultMigrationsDir     = "migrations"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultCacheTTL          = 10 * time.Minute
	defaultRecomputeDebounce = 250 * time.Millisecond
	defaultEstimateRateLimit = 60
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	DBPath            string
	MigrationsDir     string
	LogLevel          string
	LogFormat         string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	CacheTTL          time.Duration
	RecomputeDebounce time.Duration
	// EstimateRateLimit is the number of ad-hoc estimates one client may request per
	// minute. 0 disables the limit.
	EstimateRateLimit int
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: a missing .env file is fine, production injects real variables.
	_ = loadDotEnv(".env")

	return Config{
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		Port:              getEnv("PORT", defaultPort),
		DBPath:            getEnv("DB_PATH", defaultDBPath),
		MigrationsDir:     getEnv("MIGRATIONS_DIR", defaultMigrationsDir),
		LogLevel:          getEnv("LOG_LEVEL", defaultLogLevel),
		LogFormat:         getEnv("LOG_FORMAT", defaultLogFormat),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		CacheTTL:          getEnvDuration("CACHE_TTL", defaultCacheTTL),
		RecomputeDebounce: getEnvDuration("RECOMPUTE_DEBOUNCE", defaultRecomputeDebounce),
		EstimateRateLimit: getEnvInt("ESTIMATE_RATE_LIMIT", defaultEstimateRateLimit),
	}
}

// IsDev reports whether the service runs in local development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}
