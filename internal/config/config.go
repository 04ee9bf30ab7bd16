package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// WatchEntry is one symbol on the watchlist with its display name.
type WatchEntry struct {
	Symbol  string `yaml:"symbol"`
	Company string `yaml:"company"`
}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider        string `yaml:"provider"`          // "yahoo" or "mock"
		SymbolSuffix    string `yaml:"symbol_suffix"`     // appended to plain symbols for provider queries
		CacheTTLMinutes int    `yaml:"cache_ttl_minutes"` // 0 disables response caching
	} `yaml:"data_source"`
	Watchlist []WatchEntry `yaml:"watchlist"`
	Fetch     struct {
		DelaySeconds   int `yaml:"delay_seconds"` // pause between per-symbol fetches
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"fetch"`
	Report struct {
		OutDir string `yaml:"out_dir"`
		Theme  string `yaml:"theme"` // "light" or "dark" chart palette
	} `yaml:"report"`
	Schedule struct {
		Cron string `yaml:"cron"` // empty = run once and exit
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine: defaults cover every field. A .env
// file next to the binary is folded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("SYMBOL_SUFFIX"); v != "" {
		cfg.DataSource.SymbolSuffix = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("REPORT_OUT_DIR"); v != "" {
		cfg.Report.OutDir = v
	}
	if v := os.Getenv("REPORT_THEME"); v != "" {
		cfg.Report.Theme = v
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FETCH_DELAY_SECONDS"); v != "" {
		var delay int
		if _, err := fmt.Sscanf(v, "%d", &delay); err == nil {
			cfg.Fetch.DelaySeconds = delay
		}
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.SymbolSuffix == "" {
		cfg.DataSource.SymbolSuffix = ".NS"
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = DefaultWatchlist()
	}
	if cfg.Fetch.DelaySeconds == 0 {
		cfg.Fetch.DelaySeconds = 2
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 15
	}
	if cfg.Report.OutDir == "" {
		cfg.Report.OutDir = "."
	}
	if cfg.Report.Theme == "" {
		cfg.Report.Theme = "light"
	}

	return cfg, nil
}

// DefaultWatchlist returns the embedded NSE symbol list used when no
// watchlist is configured.
func DefaultWatchlist() []WatchEntry {
	return []WatchEntry{
		{Symbol: "IDEA", Company: "Vodafone Idea Limited"},
		{Symbol: "ADANIPORTS", Company: "Adani Ports and SEZ"},
		{Symbol: "RELIANCE", Company: "Reliance Industries"},
		{Symbol: "BAJAJ-AUTO", Company: "Bajaj Auto Limited"},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider must be \"yahoo\" or \"mock\", got %q", c.DataSource.Provider)
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	seen := make(map[string]bool, len(c.Watchlist))
	for _, entry := range c.Watchlist {
		if entry.Symbol == "" {
			return fmt.Errorf("watchlist entries must carry a symbol")
		}
		if seen[entry.Symbol] {
			return fmt.Errorf("duplicate watchlist symbol %q", entry.Symbol)
		}
		seen[entry.Symbol] = true
	}
	if c.Fetch.DelaySeconds < 0 {
		return fmt.Errorf("fetch.delay_seconds must not be negative")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive")
	}
	switch c.Report.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("report.theme must be \"light\" or \"dark\", got %q", c.Report.Theme)
	}
	return nil
}

// FetchDelay returns the inter-symbol pause as a duration.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.Fetch.DelaySeconds) * time.Second
}

// FetchTimeout returns the per-request timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// CacheTTL returns the provider response cache lifetime; zero disables it.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.DataSource.CacheTTLMinutes) * time.Minute
}
