package postgres

import (
	"testing"
	"time"

	"ledgerviz/pkg/kraken"

	"github.com/google/uuid"
)

// go test -v --run TestToPriceRecord
func TestToPriceRecord(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	high := 31631.0
	trades := int64(38907)
	session := uuid.New()

	p := kraken.PriceData{
		Pair:      "XBT/USD",
		Source:    kraken.SourceREST,
		Timestamp: ts,
		LastPrice: 30303.2,
		Volume:    4412.73601799,
		High:      &high,
		Trades:    &trades,
	}

	r := ToPriceRecord(p, session)

	if r.Pair != "XBT/USD" || r.Source != "rest" || r.SessionID != session {
		t.Errorf("unexpected identity: %+v", r)
	}
	if r.Timestamp.Location() != time.UTC || !r.Timestamp.Equal(ts) {
		t.Errorf("timestamp should be stored in UTC: %v", r.Timestamp)
	}
	if r.LastPrice.String() != "30303.2" {
		t.Errorf("unexpected last price: %s", r.LastPrice)
	}
	if !r.High.Valid || r.High.Decimal.String() != "31631" {
		t.Errorf("unexpected high: %+v", r.High)
	}
	if r.Open.Valid || r.Bid.Valid || r.Ask.Valid {
		t.Error("absent optional fields should be NULL")
	}

	back := r.ToPriceData()
	if back.LastPrice != p.LastPrice || back.Volume != p.Volume {
		t.Errorf("round trip changed numbers: %+v", back)
	}
	if back.High == nil || *back.High != high || back.Open != nil {
		t.Errorf("round trip changed optional fields: %+v", back)
	}
	if back.Trades == nil || *back.Trades != trades {
		t.Errorf("unexpected trades: %v", back.Trades)
	}
}

// go test -v --run TestPriceRecordTableName
func TestPriceRecordTableName(t *testing.T) {
	if (PriceRecord{}).TableName() != "price_record" {
		t.Error("unexpected table name")
	}
}
