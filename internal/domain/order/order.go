package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// AggregateType is the aggregate name carried by order events
const AggregateType = "Order"

// CustomerInfo holds the contact details captured at checkout
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// ShippingAddress holds the delivery address captured at checkout
type ShippingAddress struct {
	City          string
	PostalCode    string
	StreetAddress string
}

// Item is an immutable order line. Name and price are snapshots taken at checkout.
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   valueobject.Money
	Quantity    int
	Subtotal    valueobject.Money
	CreatedAt   time.Time
}

// Order is the aggregate root for a customer checkout
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string
	UserID        uuid.UUID
	Customer      CustomerInfo
	Shipping      ShippingAddress
	Status        Status
	PaymentMethod PaymentMethod
	IsPaid        bool
	PaidAt        *time.Time
	Subtotal      valueobject.Money
	ShippingCost  valueobject.Money
	TaxAmount     valueobject.Money
	TotalPrice    valueobject.Money
	Items         []Item
}

// LineInput is one priced line as resolved by the caller from current catalog data
type LineInput struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   valueobject.Money
	Quantity    int
}

// NewOrderInput holds everything needed to build a pending order
type NewOrderInput struct {
	OrderNumber   string
	UserID        uuid.UUID
	Customer      CustomerInfo
	Shipping      ShippingAddress
	PaymentMethod PaymentMethod
	ShippingCost  valueobject.Money
	TaxAmount     valueobject.Money
	Lines         []LineInput
}

// NewOrder creates a pending, unpaid order. Subtotal is the sum of line subtotals and
// total is round2(subtotal + shipping + tax).
func NewOrder(in NewOrderInput) (*Order, error) {
	if !IsValidOrderNumber(in.OrderNumber) {
		return nil, shared.NewValidationError("orderNumber", "Order number must match ORD-XXXXXXXX")
	}
	if in.Customer.Name == "" {
		return nil, shared.NewValidationError("customerName", "Customer name is required")
	}
	if !in.PaymentMethod.IsValid() {
		return nil, shared.NewValidationError("paymentMethod", fmt.Sprintf("Unknown payment method %q", in.PaymentMethod))
	}
	if len(in.Lines) == 0 {
		return nil, shared.NewValidationError("items", "Order must contain at least one item")
	}
	if in.ShippingCost.IsNegative() || in.TaxAmount.IsNegative() {
		return nil, shared.NewValidationError("shippingCost", "Shipping and tax cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       in.OrderNumber,
		UserID:            in.UserID,
		Customer:          in.Customer,
		Shipping:          in.Shipping,
		Status:            StatusPending,
		PaymentMethod:     in.PaymentMethod,
		ShippingCost:      in.ShippingCost.Round(),
		TaxAmount:         in.TaxAmount.Round(),
		Items:             make([]Item, 0, len(in.Lines)),
	}

	subtotal := valueobject.Zero()
	for i, line := range in.Lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].productId", i), "Product ID is required")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "Quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].unitPrice", i), "Unit price cannot be negative")
		}
		lineTotal := line.UnitPrice.MultiplyByInt(int64(line.Quantity)).Round()
		o.Items = append(o.Items, Item{
			ID:          uuid.New(),
			OrderID:     o.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice.Round(),
			Quantity:    line.Quantity,
			Subtotal:    lineTotal,
			CreatedAt:   o.CreatedAt,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	o.Subtotal = subtotal.Round()
	o.TotalPrice = ComputeTotal(o.Subtotal, o.ShippingCost, o.TaxAmount)

	o.AddDomainEvent(NewCreatedEvent(o))
	return o, nil
}

// ComputeTotal returns round2(subtotal + shipping + tax)
func ComputeTotal(subtotal, shipping, tax valueobject.Money) valueobject.Money {
	return subtotal.Add(shipping).Add(tax).Round()
}

// InitialHistory returns the first history entry, recording the creation in pending
func (o *Order) InitialHistory(actor string) StatusHistory {
	return StatusHistory{
		ID:        uuid.New(),
		OrderID:   o.ID,
		OldStatus: nil,
		NewStatus: o.Status,
		Actor:     actor,
		CreatedAt: o.CreatedAt,
	}
}

// TransitionTo moves the order to target and returns the history entry to append
func (o *Order) TransitionTo(target Status, actor string) (StatusHistory, error) {
	if !target.IsValid() {
		return StatusHistory{}, shared.NewValidationError("status", fmt.Sprintf("Unknown status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return StatusHistory{}, shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}

	old := o.Status
	o.Status = target
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewStatusChangedEvent(o, old, actor))

	return StatusHistory{
		ID:        uuid.New(),
		OrderID:   o.ID,
		OldStatus: &old,
		NewStatus: target,
		Actor:     actor,
		CreatedAt: o.UpdatedAt,
	}, nil
}

// SetPaid records the payment flag. Marking an already paid order as paid keeps the
// original paidAt. Returns false when nothing changed.
func (o *Order) SetPaid(isPaid bool, at time.Time, actor string) (bool, error) {
	if isPaid && o.Status == StatusCancelled {
		return false, shared.NewDomainError(shared.CodeInvalidStateTransition, "Cannot mark a cancelled order as paid")
	}
	if o.IsPaid == isPaid {
		return false, nil
	}

	o.IsPaid = isPaid
	if isPaid {
		paidAt := at.UTC()
		o.PaidAt = &paidAt
	} else {
		o.PaidAt = nil
	}
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewPaymentUpdatedEvent(o, actor))
	return true, nil
}

// CanDelete reports whether the order may be removed. Paid and delivered orders are retained.
func (o *Order) CanDelete() error {
	if o.IsPaid {
		return shared.NewConflictError("Paid orders cannot be deleted")
	}
	if o.Status == StatusDelivered {
		return shared.NewConflictError("Delivered orders cannot be deleted")
	}
	return nil
}

// ItemCount returns the number of order lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// RequestedQuantities sums quantity per product across lines
func RequestedQuantities(lines []LineInput) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		out[l.ProductID] += l.Quantity
	}
	return out
}
