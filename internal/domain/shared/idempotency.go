package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs were already handled
type IdempotencyStore interface {
	// MarkProcessed records eventID for ttl.
	// Returns true if the ID was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether eventID is currently recorded
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate suppression for event handlers
type IdempotencyConfig struct {
	// TTL is how long a handled event ID is remembered
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
