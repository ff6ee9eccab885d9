package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/subtrack/internal/rates/domain"
)

// Fetcher retrieves a fresh rate table from an external source.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.Table, error)
}

// Cache stores rate tables between runs.
type Cache interface {
	Get(ctx context.Context) (domain.Table, error)
	Set(ctx context.Context, table domain.Table) error
}

// Service converts amounts between currencies. It starts from the built-in
// static table and can refresh from a fetcher, caching results. Fetcher and
// cache are both optional.
type Service struct {
	fetcher Fetcher
	cache   Cache
	logger  *slog.Logger

	mu    sync.RWMutex
	table domain.Table
}

// NewService creates a new rates service seeded with the static table.
func NewService(fetcher Fetcher, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
		table:   domain.DefaultTable(),
	}
}

// Convert converts an amount between currencies. Unknown currencies pass
// through unchanged.
func (s *Service) Convert(amount float64, from, to string) float64 {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()
	return table.Convert(amount, from, to)
}

// Table returns the rate table currently in use.
func (s *Service) Table() domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Refresh loads rates from the cache, falling back to the fetcher. Failures
// leave the current table in place.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache != nil {
		table, err := s.cache.Get(ctx)
		if err == nil {
			s.swap(table)
			return nil
		}
	}

	if s.fetcher == nil {
		return nil
	}

	table, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Warn("rates refresh failed, keeping current table", "error", err)
		return err
	}
	s.swap(table)

	if s.cache != nil {
		if err := s.cache.Set(ctx, table); err != nil {
			s.logger.Warn("failed to cache rates", "error", err)
		}
	}
	return nil
}

func (s *Service) swap(table domain.Table) {
	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
}
