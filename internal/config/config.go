// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dshills/nihonto-search/internal/entitlement"
)

// Backend selects the storage engine
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListenAddr string

	StorageBackend string
	SQLitePath     string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// DealerDomains are the hosts recognized as pasted listing URLs.
	// Empty means any http(s) URL is treated as a dealer link.
	DealerDomains []string

	// MinPriceJPY gates out low-value inventory; 0 disables the gate
	MinPriceJPY int64

	// AdminTokens and PremiumTokens map bearer tokens to tiers
	AdminTokens   []string
	PremiumTokens []string

	FacetCacheTTLSeconds int

	// SecondaryTimeoutMillis bounds the best-effort aggregations
	// (facets, histogram, freshness) per request
	SecondaryTimeoutMillis int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendSQLite),
		SQLitePath:     getEnv("SQLITE_PATH", "./nihonto.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "nihonto"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "nihonto_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		DealerDomains: getEnvList("DEALER_DOMAINS"),
		MinPriceJPY:   getEnvInt64("MIN_PRICE_JPY", 100000),

		AdminTokens:   getEnvList("ADMIN_TOKENS"),
		PremiumTokens: getEnvList("PREMIUM_TOKENS"),

		FacetCacheTTLSeconds:   getEnvInt("FACET_CACHE_TTL_SECONDS", 300),
		SecondaryTimeoutMillis: getEnvInt("SECONDARY_TIMEOUT_MILLIS", 2000),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// TierTokens builds the token->tier map consumed by the entitlement service
func (c *Config) TierTokens() map[string]string {
	out := make(map[string]string)
	for _, t := range c.PremiumTokens {
		out[t] = entitlement.TierPremium
	}
	for _, t := range c.AdminTokens {
		out[t] = entitlement.TierAdmin
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(val, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
