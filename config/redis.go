package config

import "time"

// RedisConfig defines the latest-price cache connection.
type RedisConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	LatestTTL       time.Duration `mapstructure:"latest_ttl"`       // expiry of latest:PAIR keys
	SeriesRetention time.Duration `mapstructure:"series_retention"` // how far back timeseries:PAIR is kept
}
