package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines the persistence contract for orders.
// Filter keys understood by FindAll and Count: "status", "user_id".
type Repository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll lists orders without items
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts the order and its items. A duplicate order number yields shared.ErrConflict.
	Create(ctx context.Context, order *Order) error

	// UpdateState persists status and payment fields if the stored version is one below order.Version.
	// A stale version yields shared.ErrConcurrencyConflict.
	UpdateState(ctx context.Context, order *Order) error

	// Delete removes the order; items and history cascade
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByOrderNumber checks whether an order number is taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
}

// HistoryRepository stores the append-only status history
type HistoryRepository interface {
	// Append inserts an entry, assigning the next per-order sequence
	Append(ctx context.Context, entry *StatusHistory) error

	// FindByOrderID returns entries ordered by (created_at, sequence) ascending
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]StatusHistory, error)
}
