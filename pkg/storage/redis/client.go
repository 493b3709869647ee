package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ledgerviz/config"
	"ledgerviz/pkg/kraken"

	goredis "github.com/redis/go-redis/v9"
)

var (
	ErrNotFound      = errors.New("no cached price")
	ErrCorruptMember = errors.New("corrupt cached series member")
)

const (
	latestPrefix = "latest:"
	seriesPrefix = "timeseries:"
)

// RedisClient caches the latest record per pair and a short time series
// scored by unix milliseconds.
type RedisClient struct {
	rdb       *goredis.Client
	latestTTL time.Duration
	retention time.Duration
}

// NewClient connects using cfg and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return New(rdb, cfg.LatestTTL, cfg.SeriesRetention), nil
}

// New wraps an existing go-redis client.
func New(rdb *goredis.Client, latestTTL, retention time.Duration) *RedisClient {
	return &RedisClient{rdb: rdb, latestTTL: latestTTL, retention: retention}
}

func LatestKey(pair string) string { return latestPrefix + pair }

func SeriesKey(pair string) string { return seriesPrefix + pair }

// SavePrice stores p as the pair's latest record and appends it to the series.
func (r *RedisClient) SavePrice(ctx context.Context, p kraken.PriceData) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal price data: %w", err)
	}

	score := float64(p.Timestamp.UnixMilli())
	_, err = r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, LatestKey(p.Pair), data, r.latestTTL)
		pipe.ZAdd(ctx, SeriesKey(p.Pair), goredis.Z{Score: score, Member: data})
		if r.retention > 0 {
			cutoff := p.Timestamp.Add(-r.retention).UnixMilli()
			pipe.ZRemRangeByScore(ctx, SeriesKey(p.Pair), "-inf", "("+strconv.FormatInt(cutoff, 10))
			pipe.Expire(ctx, SeriesKey(p.Pair), r.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cache price: %w", err)
	}
	return nil
}

// GetLatest returns the cached latest record for pair.
func (r *RedisClient) GetLatest(ctx context.Context, pair string) (*kraken.PriceData, error) {
	raw, err := r.rdb.Get(ctx, LatestKey(pair)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pair)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}

	var p kraken.PriceData
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price data: %w", err)
	}
	return &p, nil
}

// GetRange returns cached records for pair with from <= timestamp <= to.
// A member that does not decode fails the whole read with ErrCorruptMember.
func (r *RedisClient) GetRange(ctx context.Context, pair string, from, to time.Time) ([]kraken.PriceData, error) {
	members, err := r.rdb.ZRangeByScore(ctx, SeriesKey(pair), &goredis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: strconv.FormatInt(to.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get prices in range: %w", err)
	}

	out := make([]kraken.PriceData, 0, len(members))
	for _, m := range members {
		var p kraken.PriceData
		if err := json.Unmarshal([]byte(m), &p); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorruptMember, SeriesKey(pair), err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Trim drops series entries older than olderThan from every cached pair.
func (r *RedisClient) Trim(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	maxScore := "(" + strconv.FormatInt(cutoff, 10)

	var removed int64
	iter := r.rdb.Scan(ctx, 0, seriesPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.rdb.ZRemRangeByScore(ctx, iter.Val(), "-inf", maxScore).Result()
		if err != nil {
			return removed, fmt.Errorf("trim %s: %w", iter.Val(), err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan series keys: %w", err)
	}
	return removed, nil
}

// Ping checks Redis connection health
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.rdb.Close()
}
