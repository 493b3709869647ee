package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ledgerviz/pkg/kraken"
)

// go test -v --run TestSnapshotSchedulerRun
func TestSnapshotSchedulerRun(t *testing.T) {
	var loads atomic.Int32
	s := &SnapshotScheduler{
		Interval: 20 * time.Millisecond,
		Load: func(ctx context.Context) <-chan kraken.PriceData {
			loads.Add(1)
			ch := make(chan kraken.PriceData, 1)
			ch <- kraken.PriceData{Pair: "XBT/USD", Timestamp: time.Now()}
			close(ch)
			return ch
		},
	}

	var received atomic.Int32
	proc := func(ch <-chan kraken.PriceData) {
		for range ch {
			received.Add(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	err := s.Run(ctx, proc)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}

	if loads.Load() < 2 {
		t.Errorf("expected immediate run plus at least one tick, got %d loads", loads.Load())
	}
	if received.Load() != loads.Load() {
		t.Errorf("received %d records for %d loads", received.Load(), loads.Load())
	}
}
