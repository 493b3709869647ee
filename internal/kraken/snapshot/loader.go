package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledgerviz/internal/kraken/memorystore"
	"ledgerviz/pkg/kraken"

	"go.uber.org/zap"
)

// TickerFetcher is the part of the REST client the loader needs.
type TickerFetcher interface {
	GetTicker(ctx context.Context, pairs ...string) (map[string]kraken.TickerInfo, error)
}

type TickerLoader struct {
	Fetcher     TickerFetcher
	Pairs       *memorystore.MemoryPairStore
	Timeout     time.Duration // per-request timeout
	Concurrency int
	Logger      *zap.Logger
}

// LoadTickers fetches the REST ticker of every configured pair and streams
// the normalized records into ch. Pairs are requested one at a time with
// bounded concurrency so each response maps back to its WebSocket name.
// ch is closed when all requests have finished.
func (l *TickerLoader) LoadTickers(ctx context.Context, ch chan<- kraken.PriceData) error {
	defer close(ch) // Ensure downstream consumers can exit cleanly

	pairs := l.Pairs.GetAll()
	concurrency := l.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed int

	for _, pair := range pairs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			l.Logger.Warn("ticker loading interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		}

		wg.Add(1)
		go func(pair string) {
			defer wg.Done()
			defer func() { <-sem }()

			p, err := l.loadPair(ctx, pair)
			if err != nil {
				l.Logger.Warn("failed to load ticker", zap.String("pair", pair), zap.Error(err))
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			select {
			case ch <- p:
			case <-ctx.Done():
			}
		}(pair)
	}

	wg.Wait()
	l.Logger.Info("loaded tickers", zap.Int("pairs", len(pairs)), zap.Int("failed", failed))

	if failed == len(pairs) && len(pairs) > 0 {
		return fmt.Errorf("all %d ticker requests failed", failed)
	}
	return ctx.Err()
}

func (l *TickerLoader) loadPair(ctx context.Context, pair string) (kraken.PriceData, error) {
	reqCtx := ctx
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	tickers, err := l.Fetcher.GetTicker(reqCtx, kraken.AltName(pair))
	if err != nil {
		return kraken.PriceData{}, err
	}
	if len(tickers) != 1 {
		return kraken.PriceData{}, fmt.Errorf("expected 1 ticker for %s, got %d", pair, len(tickers))
	}

	var info kraken.TickerInfo
	for _, v := range tickers {
		info = v
	}

	p, err := info.Normalize(pair, time.Now().UTC())
	if err != nil {
		return kraken.PriceData{}, err
	}
	p.Source = kraken.SourceREST
	return p, nil
}
