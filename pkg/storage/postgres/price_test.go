package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledgerviz/pkg/kraken"
	"ledgerviz/pkg/storage/postgres"

	"github.com/google/uuid"
)

// go test -v --run TestPriceCRUD
func TestPriceCRUD(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	pair := "TEST/" + uuid.NewString()[:8]
	now := time.Now().UTC().Truncate(time.Millisecond)
	bid := 0.51
	record := postgres.ToPriceRecord(kraken.PriceData{
		Pair:      pair,
		Source:    kraken.SourceWS,
		Timestamp: now,
		LastPrice: 0.5123,
		Volume:    2500.5,
		Bid:       &bid,
	}, uuid.New())

	// Create
	if err := client.InsertPrice(ctx, record); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Duplicate
	dup := *record
	dup.ID = 0
	if err := client.InsertPrice(ctx, &dup); !errors.Is(err, postgres.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// Read
	got, err := client.GetLatestPrice(ctx, pair)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	p := got.ToPriceData()
	if p.LastPrice != 0.5123 || p.Bid == nil || *p.Bid != 0.51 || p.Ask != nil {
		t.Errorf("unexpected price values: %+v", p)
	}

	rows, err := client.GetPricesInRange(ctx, pair, now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 row in range, got %d", len(rows))
	}

	// Delete
	if _, err := client.DeleteOldPrices(ctx, now.Add(time.Hour)); err != nil {
		t.Errorf("delete failed: %v", err)
	}

	if _, err := client.GetLatestPrice(ctx, pair); !errors.Is(err, postgres.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
