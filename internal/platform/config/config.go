package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. Everything defaults to
// in-memory so the binary runs with zero configuration; Postgres and Redis
// are opted into by setting their URLs.
type Server struct {
	Addr        string
	PostgresURL string
	// DidWebHost enables the did:web codec when set; identifiers are
	// anchored to this host.
	DidWebHost string
	Redis       RedisConfig
	KeyVault    KeyVaultConfig
	RateLimit   RateLimitConfig
}

// RedisConfig configures the optional Redis-backed rate limit store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KeyVaultConfig carries the at-rest encryption keys for private key
// material. Primary encrypts; retired keys remain decryptable so rotation
// never strands old ciphertexts.
type KeyVaultConfig struct {
	// PrimaryKey is base64 (raw URL encoding), 32 bytes decoded.
	PrimaryKey string
	// RetiredKeys are comma-separated base64 keys, newest first.
	RetiredKeys string
}

// RateLimitConfig carries overridable admission-control ceilings.
type RateLimitConfig struct {
	OperationLimit  int
	OperationWindow time.Duration
	RedeemLimit     int
	RedeemWindow    time.Duration
	SweepInterval   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ATTEST_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr:        addr,
		PostgresURL: os.Getenv("ATTEST_POSTGRES_URL"),
		DidWebHost:  os.Getenv("ATTEST_DID_WEB_HOST"),
		Redis: RedisConfig{
			URL:          os.Getenv("ATTEST_REDIS_URL"),
			PoolSize:     envInt("ATTEST_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ATTEST_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("ATTEST_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("ATTEST_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("ATTEST_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KeyVault: KeyVaultConfig{
			PrimaryKey:  os.Getenv("ATTEST_KEYVAULT_PRIMARY"),
			RetiredKeys: os.Getenv("ATTEST_KEYVAULT_RETIRED"),
		},
		RateLimit: RateLimitConfig{
			OperationLimit:  envInt("ATTEST_RATELIMIT_OPS", 100),
			OperationWindow: envDuration("ATTEST_RATELIMIT_WINDOW", time.Minute),
			RedeemLimit:     envInt("ATTEST_RATELIMIT_REDEEM_OPS", 3),
			RedeemWindow:    envDuration("ATTEST_RATELIMIT_REDEEM_WINDOW", 5*time.Minute),
			SweepInterval:   envDuration("ATTEST_RATELIMIT_SWEEP", time.Minute),
		},
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
