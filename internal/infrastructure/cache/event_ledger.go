package cache

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

var processedMarker = []byte("1")

// EventLedger records handled event IDs in a Store so a redelivered event
// is recognised. It owns the store and closes it on Close.
type EventLedger struct {
	store Store
}

// NewEventLedger wraps store
func NewEventLedger(store Store) *EventLedger {
	return &EventLedger{store: store}
}

// MarkProcessed records eventID. Returns false when it was already recorded.
func (l *EventLedger) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return l.store.SetIfAbsent(ctx, eventID, processedMarker, ttl)
}

// IsProcessed reports whether eventID is recorded
func (l *EventLedger) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	return l.store.Exists(ctx, eventID)
}

// Close releases the underlying store
func (l *EventLedger) Close() error {
	return l.store.Close()
}

var _ shared.IdempotencyStore = (*EventLedger)(nil)
