package memorystore

import (
	"sync"
	"testing"
	"time"

	"ledgerviz/pkg/kraken"
)

func record(pair string, price float64, ts time.Time) kraken.PriceData {
	return kraken.PriceData{Pair: pair, Timestamp: ts, LastPrice: price, Volume: 1}
}

// go test -v --run TestPriceStoreLatestAndHistory
func TestPriceStoreLatestAndHistory(t *testing.T) {
	store := NewPriceStore(3)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		store.Add(record("XBT/USD", float64(100+i), base.Add(time.Duration(i)*time.Minute)))
	}

	latest, ok := store.Latest("XBT/USD")
	if !ok || latest.LastPrice != 104 {
		t.Fatalf("unexpected latest: %+v %v", latest, ok)
	}

	history := store.History("XBT/USD")
	if len(history) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(history))
	}
	for i, want := range []float64{102, 103, 104} {
		if history[i].LastPrice != want {
			t.Errorf("history[%d] = %v, want %v", i, history[i].LastPrice, want)
		}
	}

	if _, ok := store.Latest("XRP/USD"); ok {
		t.Error("unexpected latest for unknown pair")
	}
	if store.History("XRP/USD") != nil {
		t.Error("unexpected history for unknown pair")
	}
}

// go test -v --run TestPriceStoreLatestIgnoresOlder
func TestPriceStoreLatestIgnoresOlder(t *testing.T) {
	store := NewPriceStore(10)
	now := time.Now()

	store.Add(record("XRP/USD", 0.6, now))
	store.Add(record("XRP/USD", 0.5, now.Add(-time.Minute)))

	latest, _ := store.Latest("XRP/USD")
	if latest.LastPrice != 0.6 {
		t.Errorf("older record replaced latest: %+v", latest)
	}
	if got := len(store.History("XRP/USD")); got != 2 {
		t.Errorf("both records should be in history, got %d", got)
	}
}

// go test -v --run TestPriceStoreConcurrentAdd
func TestPriceStoreConcurrentAdd(t *testing.T) {
	store := NewPriceStore(1000)
	pairs := []string{"XBT/USD", "XRP/USD", "ETH/USD"}

	var wg sync.WaitGroup
	for _, pair := range pairs {
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(pair string) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					store.Add(record(pair, float64(i), time.Now()))
				}
			}(pair)
		}
	}
	wg.Wait()

	if got := store.CountAll(); got != 3*4*50 {
		t.Errorf("CountAll = %d, want %d", got, 3*4*50)
	}
	if got := store.Pairs(); len(got) != 3 || got[0] != "ETH/USD" {
		t.Errorf("unexpected pairs: %v", got)
	}
	if got := store.LatestAll(); len(got) != 3 {
		t.Errorf("expected latest for 3 pairs, got %d", len(got))
	}
}

// go test -v --run TestPairStore
func TestPairStore(t *testing.T) {
	store := NewPairStore("XBT/USD", "XRP/USD", "XBT/USD")

	if got := store.GetAll(); len(got) != 2 {
		t.Fatalf("duplicates should be ignored: %v", got)
	}
	if !store.Contains("XRP/USD") || store.Contains("ETH/USD") {
		t.Error("unexpected Contains result")
	}

	names := store.GetRESTNames()
	if names[0] != "XBTUSD" || names[1] != "XRPUSD" {
		t.Errorf("unexpected REST names: %v", names)
	}
}
