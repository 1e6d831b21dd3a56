package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/GTDGit/catalog_sync/internal/utils"
)

// MaxPageSize is the largest page the Shopify REST API will return.
const MaxPageSize = 250

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	// CORSAllowedHosts lists origin hosts allowed to call the API from a browser.
	CORSAllowedHosts []string

	DB      DatabaseConfig
	Redis   RedisConfig
	Shopify ShopifyConfig
	Sync    SyncConfig
	Admin   AdminConfig
	Cache   CacheConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig contains Redis connection parameters. An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// ShopifyConfig contains the shop endpoint and credentials.
type ShopifyConfig struct {
	ShopURL     string
	AccessToken string
	APIKey      string
	APISecret   string
	APIVersion  string
	Timeout     time.Duration
}

// Validate fails with utils.ErrMissingCredentials when any required credential is empty.
func (c ShopifyConfig) Validate() error {
	var missing []string
	if c.ShopURL == "" {
		missing = append(missing, "SHOPIFY_SHOP_URL")
	}
	if c.AccessToken == "" {
		missing = append(missing, "SHOPIFY_ACCESS_TOKEN")
	}
	if c.APIKey == "" {
		missing = append(missing, "SHOPIFY_API_KEY")
	}
	if c.APISecret == "" {
		missing = append(missing, "SHOPIFY_API_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", utils.ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// StampMode selects how last_synced_at is stamped during a batch.
type StampMode string

const (
	StampPerRecord StampMode = "record"
	StampPerBatch  StampMode = "batch"
)

// SyncConfig controls the catalog sync loop and its triggers.
type SyncConfig struct {
	Interval     time.Duration
	PageSize     int
	MaxPages     int
	FetchTimeout time.Duration
	LockTTL      time.Duration
	StampMode    StampMode
}

// AdminConfig contains admin login credentials. An empty JWTSecret leaves admin routes open.
type AdminConfig struct {
	JWTSecret    string
	Email        string
	PasswordHash string
}

// CacheConfig contains TTLs for Redis-backed caches.
type CacheConfig struct {
	ProductDetailTTL time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. Shopify credentials are
// not validated here; callers run Shopify.Validate before any network call.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.CORSAllowedHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Host:           getEnv("DB_HOST", ""),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", ""),
		Password:       getEnv("DB_PASSWORD", ""),
		Name:           getEnv("DB_NAME", ""),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Shopify
	cfg.Shopify = ShopifyConfig{
		ShopURL:     getEnv("SHOPIFY_SHOP_URL", ""),
		AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		APIKey:      getEnv("SHOPIFY_API_KEY", ""),
		APISecret:   getEnv("SHOPIFY_API_SECRET", ""),
		APIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-01"),
	}

	// Admin
	cfg.Admin = AdminConfig{
		JWTSecret:    getEnv("JWT_SECRET", ""),
		Email:        getEnv("ADMIN_EMAIL", ""),
		PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}

	// Sync
	cfg.Sync = SyncConfig{
		PageSize:  getEnvInt("SYNC_PAGE_SIZE", MaxPageSize),
		MaxPages:  getEnvInt("SYNC_MAX_PAGES", 2000),
		StampMode: StampMode(getEnv("SYNC_STAMP_MODE", string(StampPerRecord))),
	}

	// Durations
	var err error
	if cfg.Shopify.Timeout, err = parseDurationEnv("SHOPIFY_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid SHOPIFY_TIMEOUT: %w", err)
	}
	if cfg.Sync.Interval, err = parseDurationEnv("SYNC_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	if cfg.Sync.FetchTimeout, err = parseDurationEnv("SYNC_FETCH_TIMEOUT", "30m"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_FETCH_TIMEOUT: %w", err)
	}
	if cfg.Sync.LockTTL, err = parseDurationEnv("SYNC_LOCK_TTL", "2h"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_LOCK_TTL: %w", err)
	}
	if cfg.Cache.ProductDetailTTL, err = parseDurationEnv("PRODUCT_DETAIL_CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid PRODUCT_DETAIL_CACHE_TTL: %w", err)
	}

	if cfg.Sync.PageSize <= 0 || cfg.Sync.PageSize > MaxPageSize {
		return nil, fmt.Errorf("SYNC_PAGE_SIZE must be between 1 and %d", MaxPageSize)
	}
	if cfg.Sync.MaxPages < 0 {
		return nil, errors.New("SYNC_MAX_PAGES must be >= 0")
	}
	if cfg.Sync.StampMode != StampPerRecord && cfg.Sync.StampMode != StampPerBatch {
		return nil, fmt.Errorf("SYNC_STAMP_MODE must be %q or %q", StampPerRecord, StampPerBatch)
	}

	// Basic validation for DB parameters
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
