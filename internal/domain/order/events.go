package order

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Event type constants
const (
	EventTypeCreated        = "order.created"
	EventTypeStatusChanged  = "order.status_changed"
	EventTypePaymentUpdated = "order.payment_updated"
)

// CreatedEvent is raised once a checkout commits
type CreatedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID         `json:"order_id"`
	OrderNumber   string            `json:"order_number"`
	UserID        uuid.UUID         `json:"user_id"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	TotalPrice    valueobject.Money `json:"total_price"`
	ItemCount     int               `json:"item_count"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(o *Order) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		PaymentMethod:   o.PaymentMethod,
		TotalPrice:      o.TotalPrice,
		ItemCount:       len(o.Items),
	}
}

// StatusChangedEvent is raised after an accepted status transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	CustomerEmail string    `json:"customer_email"`
	OldStatus     Status    `json:"old_status"`
	NewStatus     Status    `json:"new_status"`
	Actor         string    `json:"actor"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(o *Order, old Status, actor string) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusChanged, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerEmail:   o.Customer.Email,
		OldStatus:       old,
		NewStatus:       o.Status,
		Actor:           actor,
	}
}

// PaymentUpdatedEvent is raised when the paid flag changes
type PaymentUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	IsPaid      bool      `json:"is_paid"`
	Actor       string    `json:"actor"`
}

// NewPaymentUpdatedEvent creates a new PaymentUpdatedEvent
func NewPaymentUpdatedEvent(o *Order, actor string) *PaymentUpdatedEvent {
	return &PaymentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentUpdated, AggregateType, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		IsPaid:          o.IsPaid,
		Actor:           actor,
	}
}
