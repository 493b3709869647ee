package scheduler

import (
	"context"
	"time"

	"ledgerviz/internal/kraken/snapshot"
	"ledgerviz/pkg/kraken"

	"go.uber.org/zap"
)

// SnapshotScheduler runs a ticker load immediately and then on every tick
// of Interval until the context ends.
type SnapshotScheduler struct {
	Interval time.Duration
	Load     func(ctx context.Context) <-chan kraken.PriceData
}

func DefaultLoadFn(loader *snapshot.TickerLoader) func(ctx context.Context) <-chan kraken.PriceData {
	return func(ctx context.Context) <-chan kraken.PriceData {
		ch := make(chan kraken.PriceData, 100)

		go func() {
			if err := loader.LoadTickers(ctx, ch); err != nil && ctx.Err() == nil {
				loader.Logger.Warn("ticker snapshot failed", zap.Error(err))
			}
		}()

		return ch
	}
}

// Run blocks until ctx is done. proc must drain the channel it is given.
func (s *SnapshotScheduler) Run(ctx context.Context, proc func(<-chan kraken.PriceData)) error {
	// Run immediately once at startup
	s.runOnce(ctx, proc)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx, proc)
		}
	}
}

func (s *SnapshotScheduler) runOnce(ctx context.Context, proc func(<-chan kraken.PriceData)) {
	proc(s.Load(ctx))
}
