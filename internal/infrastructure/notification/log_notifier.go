package notification

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogNotifier writes order events to the log. Used when SNS is disabled.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// EventTypes returns the order event types
func (n *LogNotifier) EventTypes() []string {
	return OrderEventTypes
}

// Handle logs the event with its order fields
func (n *LogNotifier) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("order_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *order.CreatedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("total_price", e.TotalPrice.String()),
			zap.Int("item_count", e.ItemCount),
		)
	case *order.StatusChangedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("old_status", string(e.OldStatus)),
			zap.String("status", string(e.NewStatus)),
		)
	case *order.PaymentUpdatedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.Bool("is_paid", e.IsPaid),
		)
	}

	n.logger.Info("Order notification", fields...)
	return nil
}

var _ shared.EventHandler = (*LogNotifier)(nil)
