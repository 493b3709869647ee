package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerviz/pkg/kraken"
	"ledgerviz/pkg/storage/postgres"

	"github.com/google/uuid"
)

type recordWriter interface {
	InsertPrice(ctx context.Context, record *postgres.PriceRecord) error
}

type priceCache interface {
	SavePrice(ctx context.Context, p kraken.PriceData) error
}

// StorageSink writes every stored price to Postgres and the Redis cache.
// Either backend may be absent. Duplicate rows are not an error.
type StorageSink struct {
	db      recordWriter
	cache   priceCache
	session uuid.UUID
	timeout time.Duration
}

func NewStorageSink(session uuid.UUID, timeout time.Duration) *StorageSink {
	return &StorageSink{session: session, timeout: timeout}
}

func (s *StorageSink) WithDB(db recordWriter) *StorageSink {
	s.db = db
	return s
}

func (s *StorageSink) WithCache(cache priceCache) *StorageSink {
	s.cache = cache
	return s
}

func (s *StorageSink) Session() uuid.UUID {
	return s.session
}

func (s *StorageSink) SavePrice(ctx context.Context, p kraken.PriceData) error {
	var errs []error

	if s.db != nil {
		dbCtx, cancel := s.writeContext(ctx)
		err := s.db.InsertPrice(dbCtx, postgres.ToPriceRecord(p, s.session))
		cancel()
		if err != nil && !errors.Is(err, postgres.ErrDuplicate) {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}

	if s.cache != nil {
		cacheCtx, cancel := s.writeContext(ctx)
		err := s.cache.SavePrice(cacheCtx, p)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *StorageSink) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
