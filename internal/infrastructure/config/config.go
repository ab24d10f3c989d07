package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMongoDB  = "mongodb"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
	CacheDriverNone   = "none"
)

// Config holds application configuration values.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	StoreDriver   string        `yaml:"store_driver"`
	DatabaseURL   string        `yaml:"database_url"`
	SQLiteDSN     string        `yaml:"sqlite_dsn"`
	MongoURI      string        `yaml:"mongodb_uri"`
	MongoDBName   string        `yaml:"mongodb_db_name"`
	UsersTable    string        `yaml:"users_table"`
	CacheDriver   string        `yaml:"cache_driver"`
	RedisURL      string        `yaml:"redis_url"`
	CacheMaxKeys  int           `yaml:"cache_max_keys"`
	CacheTTL      time.Duration `yaml:"cache_ttl"` // 0 keeps entries until invalidated
	JWTSecret     string        `yaml:"jwt_secret"`
	AllowedOrigin string        `yaml:"cors_allowed_origins"`

	RefreshCountOnRead bool   `yaml:"refresh_count_on_read"`
	ConflictRetries    int    `yaml:"conflict_retries"`
	RecountSchedule    string `yaml:"recount_schedule"`
}

var _ usecasecontract.IConfigProvider = (*Config)(nil)

func defaults() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		StoreDriver:     StoreDriverSQLite,
		SQLiteDSN:       "sqlite://likes.db",
		MongoDBName:     "likes",
		UsersTable:      "users",
		CacheDriver:     CacheDriverMemory,
		CacheMaxKeys:    100_000,
		AllowedOrigin:   "*",
		ConflictRetries: 3,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// LIKES_CONFIG_FILE if set, then individual environment variables.
func Load() (*Config, error) {
	cfg := defaults()
	if path := getEnv("LIKES_CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SQLiteDSN = getEnv("SQLITE_DSN", c.SQLiteDSN)
	c.MongoURI = getEnv("MONGODB_URI", c.MongoURI)
	c.MongoDBName = getEnv("MONGODB_DB_NAME", c.MongoDBName)
	c.UsersTable = getEnv("USERS_TABLE", c.UsersTable)
	c.CacheDriver = getEnv("CACHE_DRIVER", c.CacheDriver)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.CacheMaxKeys = getEnvAsInt("CACHE_MAX_KEYS", c.CacheMaxKeys)
	c.CacheTTL = getEnvAsDuration("CACHE_TTL", c.CacheTTL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.AllowedOrigin = getEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigin)
	c.RefreshCountOnRead = getEnvAsBool("LIKES_REFRESH_COUNT_ON_READ", c.RefreshCountOnRead)
	c.ConflictRetries = getEnvAsInt("LIKES_CONFLICT_RETRIES", c.ConflictRetries)
	c.RecountSchedule = getEnv("LIKES_RECOUNT_SCHEDULE", c.RecountSchedule)
}

// Validate checks that the selected drivers have what they need to connect.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", c.StoreDriver)
		}
	case StoreDriverSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("SQLITE_DSN is required for the %s store", c.StoreDriver)
		}
	case StoreDriverMongoDB:
		if c.MongoURI == "" || c.MongoDBName == "" {
			return fmt.Errorf("MONGODB_URI and MONGODB_DB_NAME are required for the %s store", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	switch c.CacheDriver {
	case CacheDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis cache")
		}
	case CacheDriverMemory:
		if c.CacheMaxKeys <= 0 {
			return fmt.Errorf("CACHE_MAX_KEYS must be positive, got %d", c.CacheMaxKeys)
		}
	case CacheDriverNone:
	default:
		return fmt.Errorf("unknown cache driver %q", c.CacheDriver)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if c.ConflictRetries < 0 {
		return fmt.Errorf("LIKES_CONFLICT_RETRIES must not be negative, got %d", c.ConflictRetries)
	}
	return nil
}

// GetRefreshCountOnRead reports whether a cached count is rewritten on every read.
func (c *Config) GetRefreshCountOnRead() bool {
	return c.RefreshCountOnRead
}

// GetConflictRetries returns how many times a conflicting write is retried.
func (c *Config) GetConflictRetries() int {
	return c.ConflictRetries
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(name string, fallback int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as a boolean or return a default value.
func getEnvAsBool(name string, fallback bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return fallback
}

// Helper function to get an environment variable as a duration or return a default value.
func getEnvAsDuration(name string, fallback time.Duration) time.Duration {
	if val, err := time.ParseDuration(getEnv(name, "")); err == nil {
		return val
	}
	return fallback
}
