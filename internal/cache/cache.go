package cache

import (
	"context"
	"time"

	"ponselpos/backend/internal/domain"
)

// LedgerCache holds rendered ledger statements. Balances are recomputed
// from entry history on every mutation, so the cache only ever shortcuts
// reads; any miss or error falls through to a fresh fold.
type LedgerCache interface {
	Get(ctx context.Context, key string) (*domain.LedgerResponse, bool, error)
	Set(ctx context.Context, key string, value *domain.LedgerResponse, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopLedgerCache struct{}

func (NoopLedgerCache) Get(_ context.Context, _ string) (*domain.LedgerResponse, bool, error) {
	return nil, false, nil
}

func (NoopLedgerCache) Set(_ context.Context, _ string, _ *domain.LedgerResponse, _ time.Duration) error {
	return nil
}

func (NoopLedgerCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
