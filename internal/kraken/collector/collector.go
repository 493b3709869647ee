package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerviz/config"
	"ledgerviz/internal/kraken/memorystore"
	"ledgerviz/internal/kraken/scheduler"
	"ledgerviz/internal/kraken/snapshot"
	"ledgerviz/internal/kraken/stream"
	"ledgerviz/internal/server"
	"ledgerviz/pkg/kraken"
	"ledgerviz/pkg/storage/postgres"
	redisstore "ledgerviz/pkg/storage/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const storageWriteTimeout = 2 * time.Second

// Start runs the price feed until ctx is cancelled. It seeds the memory
// store from REST ticker snapshots, streams ticker updates over WebSocket,
// forwards every record to the configured storage backends and serves
// the HTTP API.
func Start(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	sink := NewStorageSink(uuid.New(), storageWriteTimeout)
	checks := make(map[string]server.HealthCheck)

	// Initialize PostgreSQL Client
	var pg *postgres.PostgresClient
	if cfg.Postgres.Enabled {
		var err error
		pg, err = postgres.InitializeAndMigratePriceRecord(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		defer pg.Close()

		sink.WithDB(pg)
		checks["postgres"] = func(ctx context.Context) error {
			if !pg.IsHealthy(ctx) {
				return errors.New("postgres unreachable")
			}
			return nil
		}
	}

	// Initialize Redis cache
	var cache *redisstore.RedisClient
	if cfg.Redis.Enabled {
		var err error
		cache, err = redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer cache.Close()

		sink.WithCache(cache)
		checks["redis"] = cache.Ping
	}

	logger.Info("collector session started", zap.String("session_id", sink.Session().String()))

	restClient := kraken.NewRESTClient(cfg.Kraken.REST.BaseURL, cfg.Kraken.REST.Timeout)
	checks["kraken"] = func(ctx context.Context) error {
		_, err := restClient.GetServerTime(ctx)
		return err
	}

	pairStore := memorystore.NewPairStore(cfg.Feed.Pairs...)
	priceStore := memorystore.NewPriceStore(cfg.Feed.HistorySize)

	loader := &snapshot.TickerLoader{
		Fetcher:     restClient,
		Pairs:       pairStore,
		Timeout:     cfg.Kraken.REST.Timeout,
		Concurrency: cfg.Feed.Concurrency,
		Logger:      logger,
	}
	sched := &scheduler.SnapshotScheduler{
		Interval: cfg.Feed.SnapshotPeriod,
		Load:     scheduler.DefaultLoadFn(loader),
	}

	wsClient := kraken.NewWSClient(cfg.Kraken.WS.URL, pairStore.GetAll(), cfg.Kraken.WS.ReconnectDelay, logger)
	wsClient.SetMessageHandler(stream.MakeMessageHandler(logger, priceStore, sink))

	srv := server.New(cfg.Server.Addr, cfg.Server.ShutdownTimeout, priceStore, checks, logger)

	g, gctx := errgroup.WithContext(ctx)

	// REST snapshots
	g.Go(func() error {
		return sched.Run(gctx, func(ch <-chan kraken.PriceData) {
			for p := range ch {
				stream.Store(logger, priceStore, sink, p)
			}
		})
	})

	// WebSocket stream
	g.Go(func() error {
		if err := wsClient.Connect(gctx); err != nil {
			return fmt.Errorf("failed to connect to websocket: %w", err)
		}
		return wsClient.Listen(gctx)
	})

	// Periodically print stored record count for visibility
	g.Go(func() error {
		return every(gctx, cfg.Feed.ReportInterval, func() {
			logger.Info("current saved prices",
				zap.Int("count", priceStore.CountAll()),
				zap.Strings("pairs", priceStore.Pairs()))
		})
	})

	if cache != nil && cfg.Redis.SeriesRetention > 0 {
		g.Go(func() error {
			return every(gctx, cfg.Redis.SeriesRetention/4, func() {
				removed, err := cache.Trim(gctx, cfg.Redis.SeriesRetention)
				if err != nil {
					logger.Warn("failed to trim cached series", zap.Error(err))
					return
				}
				logger.Debug("trimmed cached series", zap.Int64("removed", removed))
			})
		})
	}

	if pg != nil && cfg.Postgres.Retention > 0 {
		g.Go(func() error {
			return every(gctx, time.Hour, func() {
				deleted, err := pg.DeleteOldPrices(gctx, time.Now().Add(-cfg.Postgres.Retention))
				if err != nil {
					logger.Warn("failed to delete old price records", zap.Error(err))
					return
				}
				logger.Info("deleted old price records", zap.Int64("deleted", deleted))
			})
		})
	}

	g.Go(func() error {
		return srv.Run(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Info("collector stopped")
		return nil
	}
	return err
}

// every calls fn on each tick of interval until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}
