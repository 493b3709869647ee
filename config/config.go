package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Kraken   KrakenConfig   `mapstructure:"kraken"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type KrakenConfig struct {
	REST RESTConfig `mapstructure:"rest"`
	WS   WSConfig   `mapstructure:"ws"`
}

type RESTConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WSConfig struct {
	URL            string        `mapstructure:"url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// FeedConfig controls which pairs are collected and how often REST
// snapshots are taken alongside the WebSocket stream.
type FeedConfig struct {
	Pairs          []string      `mapstructure:"pairs"`           // WebSocket pair names, e.g. "XBT/USD"
	SnapshotPeriod time.Duration `mapstructure:"snapshot_period"` // REST ticker poll interval
	Concurrency    int           `mapstructure:"concurrency"`     // max concurrent REST requests
	HistorySize    int           `mapstructure:"history_size"`    // in-memory records kept per pair
	ReportInterval time.Duration `mapstructure:"report_interval"` // how often the store size is logged
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	dir := ""
	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		dir = filepath.Join(pwd, "../../config")
	} else {
		dir = filepath.Join(filepath.Dir(ex), "../config")
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// LoadFrom reads config.yaml from dir, applies defaults and environment
// overrides, and validates the result.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)

	// Support environment variables with dot notation (e.g., KRAKEN_WS_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kraken.rest.base_url", "https://api.kraken.com")
	v.SetDefault("kraken.rest.timeout", 10*time.Second)
	v.SetDefault("kraken.ws.url", "wss://ws.kraken.com")
	v.SetDefault("kraken.ws.reconnect_delay", 3*time.Second)

	v.SetDefault("feed.pairs", []string{"XBT/USD", "XRP/USD"})
	v.SetDefault("feed.snapshot_period", time.Minute)
	v.SetDefault("feed.concurrency", 5)
	v.SetDefault("feed.history_size", 1440)
	v.SetDefault("feed.report_interval", 30*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.latest_ttl", 2*time.Minute)
	v.SetDefault("redis.series_retention", time.Hour)
}

// Validate reports every missing or out-of-range setting.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Feed.Pairs) == 0 {
		errs = append(errs, errors.New("feed.pairs must list at least one pair"))
	}
	for _, p := range c.Feed.Pairs {
		if !strings.Contains(p, "/") {
			errs = append(errs, fmt.Errorf("feed.pairs: %q is not a WebSocket pair name like XBT/USD", p))
		}
	}
	if c.Feed.SnapshotPeriod <= 0 {
		errs = append(errs, errors.New("feed.snapshot_period must be positive"))
	}
	if c.Feed.Concurrency <= 0 {
		errs = append(errs, errors.New("feed.concurrency must be positive"))
	}
	if c.Feed.HistorySize <= 0 {
		errs = append(errs, errors.New("feed.history_size must be positive"))
	}
	if c.Kraken.REST.Timeout <= 0 {
		errs = append(errs, errors.New("kraken.rest.timeout must be positive"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
