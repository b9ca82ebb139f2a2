package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Viewer identifies who is reading orders
type Viewer struct {
	UserID  uuid.UUID
	IsStaff bool
}

// CanSee reports whether the viewer may read an order owned by ownerID
func (v Viewer) CanSee(ownerID uuid.UUID) bool {
	return v.IsStaff || (v.UserID != uuid.Nil && v.UserID == ownerID)
}

// CheckoutItem is one requested line
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput is the checkout request. Monetary fields are wire strings.
type CreateOrderInput struct {
	UserID        uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	City          string
	PostalCode    string
	StreetAddress string
	PaymentMethod string
	Subtotal      string
	ShippingCost  string
	TaxAmount     string
	Items         []CheckoutItem
}

// OrderReceipt is returned by a successful checkout
type OrderReceipt struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	Status      order.Status      `json:"status"`
	TotalPrice  valueobject.Money `json:"totalPrice"`
	CreatedAt   time.Time         `json:"createdAt"`
	Order       *OrderResponse    `json:"-"`
}

// OrderItemResponse is the API view of an order line
type OrderItemResponse struct {
	ID          uuid.UUID         `json:"id"`
	ProductID   uuid.UUID         `json:"productId"`
	ProductName string            `json:"productName"`
	UnitPrice   valueobject.Money `json:"unitPrice"`
	Quantity    int               `json:"quantity"`
	Subtotal    valueobject.Money `json:"subtotal"`
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	UserID        uuid.UUID           `json:"userId"`
	CustomerName  string              `json:"customerName"`
	CustomerEmail string              `json:"customerEmail"`
	CustomerPhone string              `json:"customerPhone"`
	City          string              `json:"city"`
	PostalCode    string              `json:"postalCode"`
	StreetAddress string              `json:"streetAddress"`
	Status        order.Status        `json:"status"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
	IsPaid        bool                `json:"isPaid"`
	PaidAt        *time.Time          `json:"paidAt"`
	Subtotal      valueobject.Money   `json:"subtotal"`
	ShippingCost  valueobject.Money   `json:"shippingCost"`
	TaxAmount     valueobject.Money   `json:"taxAmount"`
	TotalPrice    valueobject.Money   `json:"totalPrice"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// HistoryResponse is the API view of a status history entry
type HistoryResponse struct {
	ID        uuid.UUID     `json:"id"`
	OldStatus *order.Status `json:"oldStatus"`
	NewStatus order.Status  `json:"newStatus"`
	Actor     string        `json:"actor"`
	Sequence  int           `json:"sequence"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ListOrdersQuery filters the order listing
type ListOrdersQuery struct {
	Viewer   Viewer
	Status   string
	Page     int
	PageSize int
}

// ToOrderResponse converts a domain order to its API view
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		}
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		CustomerPhone: o.Customer.Phone,
		City:          o.Shipping.City,
		PostalCode:    o.Shipping.PostalCode,
		StreetAddress: o.Shipping.StreetAddress,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		TaxAmount:     o.TaxAmount,
		TotalPrice:    o.TotalPrice,
		Items:         items,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToHistoryResponses converts history entries to their API view
func ToHistoryResponses(entries []order.StatusHistory) []HistoryResponse {
	out := make([]HistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryResponse{
			ID:        e.ID,
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			Actor:     e.Actor,
			Sequence:  e.Sequence,
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}
