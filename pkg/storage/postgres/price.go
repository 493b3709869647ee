package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicate = errors.New("duplicate price record")
	ErrNotFound  = errors.New("price record not found")
)

// InsertPrice stores record unless a row with the same pair, source and
// timestamp already exists, in which case ErrDuplicate is returned.
func (p *PostgresClient) InsertPrice(ctx context.Context, record *PriceRecord) error {
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "pair"},
			{Name: "source"},
			{Name: "timestamp"},
		},
		DoNothing: true,
	}).Create(record)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: pair=%s source=%s timestamp=%s",
			ErrDuplicate,
			record.Pair,
			record.Source,
			record.Timestamp.Format(time.RFC3339Nano),
		)
	}

	return nil
}

// GetLatestPrice returns the newest row for pair across all sources.
func (p *PostgresClient) GetLatestPrice(ctx context.Context, pair string) (*PriceRecord, error) {
	var record PriceRecord
	err := p.DB.WithContext(ctx).
		Where("pair = ?", pair).
		Order("timestamp DESC").
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pair)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetPricesInRange returns rows for pair with from <= timestamp < to, oldest first.
func (p *PostgresClient) GetPricesInRange(ctx context.Context, pair string, from, to time.Time) ([]PriceRecord, error) {
	var records []PriceRecord
	err := p.DB.WithContext(ctx).
		Where("pair = ? AND timestamp >= ? AND timestamp < ?", pair, from, to).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteOldPrices removes rows older than before and reports how many went.
func (p *PostgresClient) DeleteOldPrices(ctx context.Context, before time.Time) (int64, error) {
	tx := p.DB.WithContext(ctx).
		Where("timestamp < ?", before).
		Delete(&PriceRecord{})
	return tx.RowsAffected, tx.Error
}
