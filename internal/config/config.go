package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the site service.
type Config struct {
	// HTTP listener
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Logging
	LogLevel string
	LogFile  string

	// Market data
	DexScreenerBaseURL string
	PairAddress        string
	HTTPTimeout        time.Duration

	// Timers
	MarketPollInterval       time.Duration
	PortfolioRefreshInterval time.Duration
	AccrualInterval          time.Duration
	FeedInterval             time.Duration
	TxConfirmDelay           time.Duration
	NoticeTTL                time.Duration

	// Optional integrations
	NTFYEndpoint       string
	CDPAddress         string
	CDPPort            int
	WalletTabURLFilter string
	JournalDir         string

	// Inbound API limits
	APIRateLimit float64
	APIRateBurst int
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BindAddr:                 getEnvOrDefault("VOLVOT_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:           getEnvListOrDefault("VOLVOT_PORT_CANDIDATES", []string{"127.0.0.1:8191", "127.0.0.1:8192"}),
		PortAutoFallback:         getEnvBoolOrDefault("VOLVOT_PORT_AUTO_FALLBACK", true),
		LogLevel:                 strings.ToLower(getEnvOrDefault("VOLVOT_LOG_LEVEL", "info")),
		LogFile:                  getEnvOrDefault("VOLVOT_LOG_FILE", "logs/volvot.log"),
		DexScreenerBaseURL:       strings.TrimRight(getEnvOrDefault("DEXSCREENER_BASE_URL", "https://api.dexscreener.com/latest/dex/pairs/base"), "/"),
		PairAddress:              getEnvOrDefault("VOLVOT_PAIR_ADDRESS", "0x67C28Ff783721Bd6482348646D32E76c6C177397"),
		HTTPTimeout:              getEnvDurationOrDefault("MARKET_HTTP_TIMEOUT", 10*time.Second),
		MarketPollInterval:       getEnvDurationOrDefault("MARKET_POLL_INTERVAL", 30*time.Second),
		PortfolioRefreshInterval: getEnvDurationOrDefault("PORTFOLIO_REFRESH_INTERVAL", 30*time.Second),
		AccrualInterval:          getEnvDurationOrDefault("ACCRUAL_INTERVAL", time.Minute),
		FeedInterval:             getEnvDurationOrDefault("FEED_INTERVAL", 30*time.Second),
		TxConfirmDelay:           getEnvDurationOrDefault("TX_CONFIRM_DELAY", 2*time.Second),
		NoticeTTL:                getEnvDurationOrDefault("NOTICE_TTL", 5*time.Second),
		NTFYEndpoint:             getEnvOrDefault("NTFY_ENDPOINT", ""),
		CDPAddress:               getEnvOrDefault("CHROMIUM_CDP_ADDRESS", ""),
		CDPPort:                  getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9220),
		WalletTabURLFilter:       getEnvOrDefault("WALLET_TAB_URL_FILTER", "volvot"),
		JournalDir:               getEnvOrDefault("JOURNAL_DIR", "./journal"),
		APIRateLimit:             getEnvFloatOrDefault("API_RATE_LIMIT", 10),
		APIRateBurst:             getEnvIntOrDefault("API_RATE_BURST", 20),
	}

	if cfg.PairAddress == "" {
		return nil, fmt.Errorf("config: VOLVOT_PAIR_ADDRESS must not be empty")
	}
	if cfg.MarketPollInterval < time.Second {
		cfg.MarketPollInterval = time.Second
	}
	if cfg.AccrualInterval < time.Second {
		cfg.AccrualInterval = time.Second
	}
	if cfg.APIRateBurst < 1 {
		cfg.APIRateBurst = 1
	}

	return cfg, nil
}

// PairURL returns the DexScreener pair endpoint for the configured pair.
func (c *Config) PairURL() string {
	return c.DexScreenerBaseURL + "/" + c.PairAddress
}

// WalletCDPURL returns the CDP endpoint used by the browser wallet provider,
// or "" when no browser is configured.
func (c *Config) WalletCDPURL() string {
	if c.CDPAddress == "" {
		return ""
	}
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		slog.Warn("ignoring malformed duration", "key", key, "value", val)
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
