package cache

import (
	"context"
	"time"

	appanalytics "github.com/storefront/backend/internal/application/analytics"
)

// Store is the contract shared by the memory and Redis backends.
// Analytics uses it as a ResultCache; the event ledger uses SetIfAbsent and Exists.
type Store interface {
	appanalytics.ResultCache
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
