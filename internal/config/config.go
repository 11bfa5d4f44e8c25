package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Payment   PaymentConfig
	Sweeper   SweeperConfig
	Ledger    LedgerConfig
	Webhook   WebhookConfig
	Sponsor   SponsorConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration. Driver is "sqlite" or
// "postgres"; DSN follows the driver's format.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// PaymentConfig holds payment session lifecycle settings
type PaymentConfig struct {
	DefaultTTL       time.Duration
	MinExpirySeconds int
	MaxExpirySeconds int
	URIScheme        string
	WebBaseURL       string
	Decimals         int
}

// SweeperConfig holds the background expiry job settings
type SweeperConfig struct {
	Interval        time.Duration
	CleanupInterval time.Duration
	RetentionAge    time.Duration
	StuckAfter      time.Duration
}

// LedgerConfig holds the Movement fullnode settings
type LedgerConfig struct {
	Network       string
	NodeURL       string
	FaucetURL     string
	ExplorerURL   string
	ModuleAddress string
	CoinType      string
	SubmitTimeout time.Duration
}

// WebhookConfig holds merchant notification settings
type WebhookConfig struct {
	Timeout time.Duration
}

// SponsorConfig holds the gas station settings. Empty values disable
// sponsorship and senders pay their own gas.
type SponsorConfig struct {
	URL       string
	AccessKey string
}

// RateLimitConfig holds the per-client request throttle
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "3001"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", nil),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "file:tapmove.db"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Payment: PaymentConfig{
			DefaultTTL:       getEnvAsDuration("PAYMENT_DEFAULT_TTL", 15*time.Minute),
			MinExpirySeconds: getEnvAsInt("PAYMENT_MIN_EXPIRY_SECONDS", 60),
			MaxExpirySeconds: getEnvAsInt("PAYMENT_MAX_EXPIRY_SECONDS", 3600),
			URIScheme:        getEnv("PAYMENT_URI_SCHEME", "tapmove"),
			WebBaseURL:       getEnv("PAYMENT_WEB_BASE_URL", ""),
			Decimals:         getEnvAsInt("PAYMENT_DECIMALS", 6),
		},
		Sweeper: SweeperConfig{
			Interval:        getEnvAsDuration("SWEEPER_INTERVAL", 30*time.Second),
			CleanupInterval: getEnvAsDuration("SWEEPER_CLEANUP_INTERVAL", time.Hour),
			RetentionAge:    getEnvAsDuration("SWEEPER_RETENTION_AGE", 7*24*time.Hour),
			StuckAfter:      getEnvAsDuration("SWEEPER_STUCK_AFTER", 2*time.Minute),
		},
		Ledger: LedgerConfig{
			Network:       getEnv("LEDGER_NETWORK", "testnet"),
			NodeURL:       getEnv("LEDGER_NODE_URL", "https://full.testnet.movementinfra.xyz/v1"),
			FaucetURL:     getEnv("LEDGER_FAUCET_URL", "https://faucet.testnet.movementinfra.xyz"),
			ExplorerURL:   getEnv("LEDGER_EXPLORER_URL", "https://explorer.movementnetwork.xyz"),
			ModuleAddress: getEnv("LEDGER_MODULE_ADDRESS", ""),
			CoinType:      getEnv("LEDGER_COIN_TYPE", "0x1::aptos_coin::AptosCoin"),
			SubmitTimeout: getEnvAsDuration("LEDGER_SUBMIT_TIMEOUT", 30*time.Second),
		},
		Webhook: WebhookConfig{
			Timeout: getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Sponsor: SponsorConfig{
			URL:       getEnv("GAS_STATION_URL", ""),
			AccessKey: getEnv("GAS_STATION_ACCESS_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
