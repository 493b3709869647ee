package postgres

import (
	"time"

	"ledgerviz/pkg/kraken"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceRecord represents a normalized ticker record stored in the database.
type PriceRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Pair      string    `gorm:"type:text;not null;index:idx_price_pair;index:idx_pair_source_timestamp,unique"`
	Source    string    `gorm:"type:varchar(8);not null;index:idx_pair_source_timestamp,unique"`
	Timestamp time.Time `gorm:"not null;index:idx_pair_source_timestamp,unique;index:idx_price_timestamp"`

	LastPrice decimal.Decimal `gorm:"type:numeric;not null"`
	Volume    decimal.Decimal `gorm:"type:numeric;not null"`

	Open  decimal.NullDecimal `gorm:"type:numeric"`
	High  decimal.NullDecimal `gorm:"type:numeric"`
	Low   decimal.NullDecimal `gorm:"type:numeric"`
	Close decimal.NullDecimal `gorm:"type:numeric"`
	VWAP  decimal.NullDecimal `gorm:"column:vwap;type:numeric"`
	Bid   decimal.NullDecimal `gorm:"type:numeric"`
	Ask   decimal.NullDecimal `gorm:"type:numeric"`

	Trades *int64

	// SessionID identifies the collector run that wrote the row.
	SessionID uuid.UUID `gorm:"type:uuid;index:idx_price_session"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (PriceRecord) TableName() string {
	return "price_record"
}

// ToPriceRecord converts a normalized record into a PriceRecord for DB insertion.
func ToPriceRecord(p kraken.PriceData, session uuid.UUID) *PriceRecord {
	return &PriceRecord{
		Pair:      p.Pair,
		Source:    string(p.Source),
		Timestamp: p.Timestamp.UTC(),
		LastPrice: decimal.NewFromFloat(p.LastPrice),
		Volume:    decimal.NewFromFloat(p.Volume),
		Open:      nullDecimal(p.Open),
		High:      nullDecimal(p.High),
		Low:       nullDecimal(p.Low),
		Close:     nullDecimal(p.Close),
		VWAP:      nullDecimal(p.VWAP),
		Bid:       nullDecimal(p.Bid),
		Ask:       nullDecimal(p.Ask),
		Trades:    p.Trades,
		SessionID: session,
	}
}

// ToPriceData converts a stored row back into a normalized record.
func (r *PriceRecord) ToPriceData() kraken.PriceData {
	return kraken.PriceData{
		Pair:      r.Pair,
		Source:    kraken.Source(r.Source),
		Timestamp: r.Timestamp,
		LastPrice: r.LastPrice.InexactFloat64(),
		Volume:    r.Volume.InexactFloat64(),
		Open:      floatPtr(r.Open),
		High:      floatPtr(r.High),
		Low:       floatPtr(r.Low),
		Close:     floatPtr(r.Close),
		VWAP:      floatPtr(r.VWAP),
		Bid:       floatPtr(r.Bid),
		Ask:       floatPtr(r.Ask),
		Trades:    r.Trades,
	}
}

func nullDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}
}

func floatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}
